package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Session records a device that logged in.
type Session struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"size:36;not null;index" json:"user_id"`
	IPID       string         `gorm:"column:ip_id;size:64" json:"ip_id"`
	DeviceData datatypes.JSON `json:"device_data"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}
