package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment targets exactly one of an education center or a branch.
type Comment struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Text      string     `gorm:"type:text;not null" json:"text"`
	Star      int        `gorm:"not null" json:"star"`
	EduID     *uuid.UUID `gorm:"size:36;index" json:"edu_id"`
	BranchID  *uuid.UUID `gorm:"size:36;index" json:"branch_id"`
	UserID    uuid.UUID  `gorm:"size:36;not null;index" json:"user_id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`

	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	EduCenter *EduCenter `gorm:"foreignKey:EduID" json:"edu_center,omitempty"`
	Branch    *Branch    `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
}
