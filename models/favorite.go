package models

import (
	"time"

	"github.com/google/uuid"
)

// Like is a user's favourite mark on a center or a branch. The composite
// unique indexes allow at most one like per (user, target).
type Like struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"size:36;not null;uniqueIndex:idx_like_user_edu;uniqueIndex:idx_like_user_branch" json:"user_id"`
	EduID     *uuid.UUID `gorm:"size:36;uniqueIndex:idx_like_user_edu" json:"edu_id"`
	BranchID  *uuid.UUID `gorm:"size:36;uniqueIndex:idx_like_user_branch" json:"branch_id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`

	EduCenter *EduCenter `gorm:"foreignKey:EduID" json:"edu_center,omitempty"`
	Branch    *Branch    `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
}

type Enrollment struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"size:36;not null;index" json:"user_id"`
	EduID     uuid.UUID  `gorm:"size:36;not null;index" json:"edu_id"`
	BranchID  *uuid.UUID `gorm:"size:36;index" json:"branch_id"`
	Date      time.Time  `gorm:"not null" json:"date"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`

	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	EduCenter *EduCenter `gorm:"foreignKey:EduID" json:"edu_center,omitempty"`
	Branch    *Branch    `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
}
