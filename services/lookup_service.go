package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/vnkhanh/educenter-backend/models"
)

type LookupInput struct {
	Name  *string `json:"name" binding:"omitempty,min=3,max=100"`
	Image *string `json:"image" binding:"omitempty,url"`
}

// LookupKind describes one reference table (subjects, fields, regions, resource categories).
type LookupKind[T any] struct {
	Label        string // "Subject"
	MaxName      int
	HasImage     bool
	New          func(name, image string) T
	BeforeDelete func(tx *gorm.DB, id uint) error
}

var lookupList = ListSpec{
	SortFields: map[string]string{
		"createdAt": "created_at",
		"updatedAt": "updated_at",
		"name":      "name",
		"id":        "id",
	},
	DefaultSort: "createdAt",
	Filters: []Filter{
		{Param: "name", Column: "name", Kind: FilterLike},
	},
}

// LookupService implements CRUD for a table unique by name.
type LookupService[T any] struct {
	db   *gorm.DB
	kind LookupKind[T]
}

func NewLookupService[T any](db *gorm.DB, kind LookupKind[T]) *LookupService[T] {
	return &LookupService[T]{db: db, kind: kind}
}

func (s *LookupService[T]) Label() string { return s.kind.Label }

func (s *LookupService[T]) lower() string { return strings.ToLower(s.kind.Label) }

func (s *LookupService[T]) notFound() string { return s.kind.Label + " not found" }

func (s *LookupService[T]) duplicate() string {
	return fmt.Sprintf("This %s name already exists", s.lower())
}

func (s *LookupService[T]) checkName(name string) error {
	if s.kind.MaxName > 0 && utf8.RuneCountInString(name) > s.kind.MaxName {
		return NewValidationError(fmt.Sprintf("name must be at most %d characters", s.kind.MaxName))
	}
	return nil
}

func (s *LookupService[T]) List(ctx context.Context, q url.Values) (*Page[T], error) {
	return List[T](s.db.WithContext(ctx).Model(new(T)), q, lookupList, nil)
}

func (s *LookupService[T]) Get(ctx context.Context, id uint) (*T, error) {
	var row T
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, s.notFound())
	}
	return &row, nil
}

func (s *LookupService[T]) Create(ctx context.Context, in LookupInput) (*T, error) {
	if err := requireFields(map[string]bool{"name": in.Name != nil}); err != nil {
		return nil, err
	}
	if err := s.checkName(*in.Name); err != nil {
		return nil, err
	}
	image := ""
	if s.kind.HasImage && in.Image != nil {
		image = *in.Image
	}
	row := s.kind.New(*in.Name, image)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, new(T), "name", *in.Name, nil, s.duplicate()); err != nil {
			return err
		}
		return duplicateOr(tx.Create(&row).Error, s.duplicate())
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *LookupService[T]) Update(ctx context.Context, id uint, in LookupInput) (*T, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, new(T), id, s.notFound()); err != nil {
			return err
		}
		updates := map[string]any{}
		if in.Name != nil {
			if err := s.checkName(*in.Name); err != nil {
				return err
			}
			if err := ensureUnique(tx, new(T), "name", *in.Name, id, s.duplicate()); err != nil {
				return err
			}
			updates["name"] = *in.Name
		}
		if in.Image != nil && s.kind.HasImage {
			updates["image"] = *in.Image
		}
		if len(updates) == 0 {
			return nil
		}
		return duplicateOr(tx.Model(new(T)).Where("id = ?", id).Updates(updates).Error, s.duplicate())
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *LookupService[T]) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, new(T), id, s.notFound()); err != nil {
			return err
		}
		if s.kind.BeforeDelete != nil {
			if err := s.kind.BeforeDelete(tx, id); err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(new(T)).Error
	})
}

// usage points at a column referencing a lookup id.
type usage struct {
	model  any
	column string
}

// refuseWhileUsed builds a BeforeDelete hook rejecting the delete when any
// of the given (model, column) pairs still references the id.
func refuseWhileUsed(label string, refs ...usage) func(tx *gorm.DB, id uint) error {
	return func(tx *gorm.DB, id uint) error {
		for _, ref := range refs {
			var count int64
			if err := tx.Model(ref.model).Where(ref.column+" = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return NewValidationError(label + " is in use and cannot be deleted")
			}
		}
		return nil
	}
}

// unlink builds a BeforeDelete hook removing link rows that point at the id.
func unlink(links ...usage) func(tx *gorm.DB, id uint) error {
	return func(tx *gorm.DB, id uint) error {
		for _, l := range links {
			if err := tx.Where(l.column+" = ?", id).Delete(l.model).Error; err != nil {
				return err
			}
		}
		return nil
	}
}

func NewSubjectService(db *gorm.DB) *LookupService[models.Subject] {
	return NewLookupService(db, LookupKind[models.Subject]{
		Label:    "Subject",
		MaxName:  100,
		HasImage: true,
		New:      func(name, image string) models.Subject { return models.Subject{Name: name, Image: image} },
		BeforeDelete: unlink(
			usage{&models.EduCenterSubject{}, "subject_id"},
			usage{&models.BranchSubject{}, "subject_id"},
		),
	})
}

func NewFieldService(db *gorm.DB) *LookupService[models.Field] {
	return NewLookupService(db, LookupKind[models.Field]{
		Label:    "Field",
		MaxName:  100,
		HasImage: true,
		New:      func(name, image string) models.Field { return models.Field{Name: name, Image: image} },
		BeforeDelete: unlink(
			usage{&models.EduCenterField{}, "field_id"},
			usage{&models.BranchField{}, "field_id"},
		),
	})
}

func NewRegionService(db *gorm.DB) *LookupService[models.Region] {
	return NewLookupService(db, LookupKind[models.Region]{
		Label:   "Region",
		MaxName: 100,
		New:     func(name, _ string) models.Region { return models.Region{Name: name} },
		BeforeDelete: refuseWhileUsed("Region",
			usage{&models.User{}, "region_id"},
			usage{&models.EduCenter{}, "region_id"},
			usage{&models.Branch{}, "region_id"},
		),
	})
}

func NewResourceCategoryService(db *gorm.DB) *LookupService[models.ResourceCategory] {
	return NewLookupService(db, LookupKind[models.ResourceCategory]{
		Label:    "Resource category",
		MaxName:  50,
		HasImage: true,
		New: func(name, image string) models.ResourceCategory {
			return models.ResourceCategory{Name: name, Image: image}
		},
		BeforeDelete: refuseWhileUsed("Resource category",
			usage{&models.Resource{}, "category_id"},
		),
	})
}
