package services

import (
	"context"
	"net/url"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/educenter-backend/models"
)

type ResourceInput struct {
	Name        *string `json:"name" binding:"omitempty,min=3,max=100"`
	Image       *string `json:"image" binding:"omitempty,url"`
	File        *string `json:"file" binding:"omitempty,url"`
	Link        *string `json:"link" binding:"omitempty,url"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	CategoryID  *uint   `json:"category_id" binding:"omitempty,min=1"`
}

var resourceList = ListSpec{
	SortFields: map[string]string{
		"createdAt": "created_at",
		"updatedAt": "updated_at",
		"name":      "name",
	},
	DefaultSort: "createdAt",
	Filters: []Filter{
		{Param: "name", Column: "name", Kind: FilterLike},
		{Param: "category_id", Column: "category_id", Kind: FilterUint},
		{Param: "user_id", Column: "user_id", Kind: FilterUUID},
	},
}

type ResourceService struct {
	db   *gorm.DB
	gate *Gate
}

func NewResourceService(db *gorm.DB, gate *Gate) *ResourceService {
	return &ResourceService{db: db, gate: gate}
}

func withCategory(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Category").Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "fullname", "image")
	})
}

func (s *ResourceService) List(ctx context.Context, q url.Values) (*Page[models.Resource], error) {
	return List[models.Resource](s.db.WithContext(ctx).Model(&models.Resource{}), q, resourceList, withCategory)
}

func (s *ResourceService) Get(ctx context.Context, id uint) (*models.Resource, error) {
	var resource models.Resource
	if err := withCategory(s.db.WithContext(ctx)).First(&resource, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Resource not found")
	}
	return &resource, nil
}

func (s *ResourceService) Create(ctx context.Context, actor Actor, in ResourceInput) (*models.Resource, error) {
	if err := requireFields(map[string]bool{
		"name":        in.Name != nil,
		"category_id": in.CategoryID != nil,
	}); err != nil {
		return nil, err
	}
	resource := models.Resource{
		Name:       *in.Name,
		CategoryID: *in.CategoryID,
		UserID:     actor.ID,
	}
	if in.Image != nil {
		resource.Image = *in.Image
	}
	if in.File != nil {
		resource.File = *in.File
	}
	if in.Link != nil {
		resource.Link = *in.Link
	}
	if in.Description != nil {
		resource.Description = *in.Description
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.ResourceCategory{}, resource.CategoryID, "Resource category not found"); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&resource).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, resource.ID)
}

func (s *ResourceService) Update(ctx context.Context, actor Actor, id uint, in ResourceInput) (*models.Resource, error) {
	if err := s.gate.Authorize(ctx, actor, OpResourceUpdate, id); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{}
		if in.CategoryID != nil {
			if err := ensureExists(tx, &models.ResourceCategory{}, *in.CategoryID, "Resource category not found"); err != nil {
				return err
			}
			updates["category_id"] = *in.CategoryID
		}
		for column, value := range map[string]*string{
			"name":        in.Name,
			"image":       in.Image,
			"file":        in.File,
			"link":        in.Link,
			"description": in.Description,
		} {
			if value != nil {
				updates[column] = *value
			}
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.Resource{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *ResourceService) Delete(ctx context.Context, actor Actor, id uint) error {
	if err := s.gate.Authorize(ctx, actor, OpResourceDelete, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&models.Resource{}, "id = ?", id).Error
}
