package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser       UserRole = "user"       // regular visitor
	RoleCEO        UserRole = "ceo"        // owns education centers
	RoleAdmin      UserRole = "admin"      // platform moderator
	RoleSuperAdmin UserRole = "superadmin" // manages admins
)

// AllRoles lists every role accepted by the platform.
var AllRoles = []UserRole{RoleUser, RoleCEO, RoleAdmin, RoleSuperAdmin}

// IsStaff reports whether the role bypasses ownership checks.
func (r UserRole) IsStaff() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type User struct {
	ID        uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	Fullname  string    `gorm:"size:50;uniqueIndex;not null" json:"fullname"`
	Email     string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Phone     string    `gorm:"size:20;uniqueIndex;not null" json:"phone"`
	Password  string    `gorm:"type:text;not null" json:"-"`
	Image     string    `gorm:"size:500" json:"image"`
	Role      UserRole  `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	RegionID  *uint     `gorm:"index" json:"region_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Region *Region `gorm:"foreignKey:RegionID" json:"region,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
