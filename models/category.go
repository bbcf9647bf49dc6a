package models

import (
	"time"

	"github.com/google/uuid"
)

type ResourceCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50;not null;uniqueIndex" json:"name"`
	Image     string    `gorm:"size:500" json:"image"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

type Resource struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Image       string    `gorm:"size:500" json:"image"`
	File        string    `gorm:"size:500" json:"file"`
	Link        string    `gorm:"size:500" json:"link"`
	Description string    `gorm:"type:text" json:"description"`
	CategoryID  uint      `gorm:"not null;index" json:"category_id"`
	UserID      uuid.UUID `gorm:"size:36;not null;index" json:"user_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Category *ResourceCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	User     *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
