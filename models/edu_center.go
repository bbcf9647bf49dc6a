package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EduCenter struct {
	ID          uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Phone       string    `gorm:"size:20;not null;uniqueIndex" json:"phone"`
	Image       string    `gorm:"size:500" json:"image"`
	Address     string    `gorm:"size:255;not null" json:"address"`
	RegionID    uint      `gorm:"not null;index" json:"region_id"`
	CEOID       uuid.UUID `gorm:"column:ceo_id;size:36;not null;index" json:"CEO_id"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// Derived on read
	BranchCount int64   `gorm:"-" json:"branchCount"`
	LikeCount   int64   `gorm:"-" json:"likeCount"`
	AverageStar float64 `gorm:"-" json:"averageStar"`

	Region   *Region   `gorm:"foreignKey:RegionID" json:"region,omitempty"`
	CEO      *User     `gorm:"foreignKey:CEOID" json:"ceo,omitempty"`
	Subjects []Subject `gorm:"many2many:edu_center_subjects;" json:"subjects"`
	Fields   []Field   `gorm:"many2many:edu_center_fields;" json:"fields"`
	Branches []Branch  `gorm:"foreignKey:EduID" json:"branches,omitempty"`
	Comments []Comment `gorm:"foreignKey:EduID" json:"comments,omitempty"`
}

func (e *EduCenter) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

type Branch struct {
	ID        uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Phone     string    `gorm:"size:20;not null;uniqueIndex" json:"phone"`
	Image     string    `gorm:"size:500" json:"image"`
	Address   string    `gorm:"size:255;not null" json:"address"`
	RegionID  uint      `gorm:"not null;index" json:"region_id"`
	EduID     uuid.UUID `gorm:"size:36;not null;index" json:"edu_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	LikeCount   int64   `gorm:"-" json:"likeCount"`
	AverageStar float64 `gorm:"-" json:"averageStar"`

	Region    *Region    `gorm:"foreignKey:RegionID" json:"region,omitempty"`
	EduCenter *EduCenter `gorm:"foreignKey:EduID" json:"edu_center,omitempty"`
	Subjects  []Subject  `gorm:"many2many:branch_subjects;" json:"subjects"`
	Fields    []Field    `gorm:"many2many:branch_fields;" json:"fields"`
	Comments  []Comment  `gorm:"foreignKey:BranchID" json:"comments,omitempty"`
}

func (b *Branch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Link tables. Composite keys keep each pair unique.

type EduCenterSubject struct {
	EduCenterID uuid.UUID `gorm:"size:36;primaryKey"`
	SubjectID   uint      `gorm:"primaryKey"`
}

type EduCenterField struct {
	EduCenterID uuid.UUID `gorm:"size:36;primaryKey"`
	FieldID     uint      `gorm:"primaryKey"`
}

type BranchSubject struct {
	BranchID  uuid.UUID `gorm:"size:36;primaryKey"`
	SubjectID uint      `gorm:"primaryKey"`
}

type BranchField struct {
	BranchID uuid.UUID `gorm:"size:36;primaryKey"`
	FieldID  uint      `gorm:"primaryKey"`
}
