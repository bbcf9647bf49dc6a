package services

import (
	"context"
	"net/url"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/educenter-backend/logger"
	"github.com/vnkhanh/educenter-backend/models"
)

// EduCenterInput serves both create and partial update. Relation arrays,
// when present, replace the whole link set.
type EduCenterInput struct {
	Name        *string    `json:"name" binding:"omitempty,min=3,max=100"`
	Phone       *string    `json:"phone" binding:"omitempty,center_phone"`
	Image       *string    `json:"image" binding:"omitempty,url"`
	Address     *string    `json:"address" binding:"omitempty,min=5,max=255"`
	RegionID    *uint      `json:"region_id" binding:"omitempty,min=1"`
	CEOID       *uuid.UUID `json:"CEO_id"`
	Description *string    `json:"description" binding:"omitempty,min=10,max=1000"`
	Subjects    *[]uint    `json:"subjects"`
	Fields      *[]uint    `json:"fields"`
}

var eduCenterList = ListSpec{
	SortFields: map[string]string{
		"createdAt": "created_at",
		"updatedAt": "updated_at",
		"name":      "name",
		"address":   "address",
		"region_id": "region_id",
	},
	DefaultSort: "createdAt",
	Filters: []Filter{
		{Param: "name", Column: "edu_centers.name", Kind: FilterLike},
		{Param: "phone", Column: "edu_centers.phone", Kind: FilterLike},
		{Param: "address", Column: "edu_centers.address", Kind: FilterLike},
		{Param: "region_id", Column: "edu_centers.region_id", Kind: FilterUint},
		{Param: "ceo_id", Column: "edu_centers.ceo_id", Kind: FilterUUID},
		{Param: "subject_id", Column: "edu_centers.id", Kind: FilterUint,
			LinkTable: "edu_center_subjects", LinkOwner: "edu_center_id", LinkColumn: "subject_id"},
		{Param: "field_id", Column: "edu_centers.id", Kind: FilterUint,
			LinkTable: "edu_center_fields", LinkOwner: "edu_center_id", LinkColumn: "field_id"},
	},
}

type EduCenterService struct {
	db   *gorm.DB
	gate *Gate
	agg  *Aggregator
}

func NewEduCenterService(db *gorm.DB, gate *Gate, agg *Aggregator) *EduCenterService {
	return &EduCenterService{db: db, gate: gate, agg: agg}
}

func (s *EduCenterService) List(ctx context.Context, q url.Values) (*Page[models.EduCenter], error) {
	db := s.db.WithContext(ctx).Model(&models.EduCenter{})
	page, err := List[models.EduCenter](db, q, eduCenterList, func(tx *gorm.DB) *gorm.DB {
		return tx.Preload("Region").Preload("Subjects").Preload("Fields")
	})
	if err != nil {
		return nil, err
	}
	if err := s.agg.DecorateEduCenters(ctx, page.Data); err != nil {
		return nil, err
	}
	return page, nil
}

func (s *EduCenterService) Get(ctx context.Context, id uuid.UUID) (*models.EduCenter, error) {
	var center models.EduCenter
	err := s.db.WithContext(ctx).
		Preload("Region").
		Preload("Subjects").
		Preload("Fields").
		Preload("Branches").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Comments.User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "fullname", "image")
		}).
		First(&center, "id = ?", id).Error
	if err != nil {
		return nil, notFoundOr(err, "Education center not found")
	}

	centers := []models.EduCenter{center}
	if err := s.agg.DecorateEduCenters(ctx, centers); err != nil {
		return nil, err
	}
	if err := s.agg.DecorateBranches(ctx, centers[0].Branches); err != nil {
		return nil, err
	}
	return &centers[0], nil
}

// resolveCEO decides the owner of a new center: a ceo always owns what they
// create, staff must name an existing ceo user.
func resolveCEO(tx *gorm.DB, actor Actor, requested *uuid.UUID) (uuid.UUID, error) {
	if actor.Role == models.RoleCEO {
		if requested != nil && *requested != actor.ID {
			return uuid.Nil, Forbidden("You can only create education centers for yourself")
		}
		return actor.ID, nil
	}
	if requested == nil {
		return uuid.Nil, NewValidationError("CEO_id is required")
	}
	var count int64
	if err := tx.Model(&models.User{}).
		Where("id = ? AND role = ?", *requested, models.RoleCEO).
		Count(&count).Error; err != nil {
		return uuid.Nil, err
	}
	if count == 0 {
		return uuid.Nil, NotFound("CEO not found")
	}
	return *requested, nil
}

func (s *EduCenterService) Create(ctx context.Context, actor Actor, in EduCenterInput) (*models.EduCenter, error) {
	if err := requireFields(map[string]bool{
		"name":        in.Name != nil,
		"phone":       in.Phone != nil,
		"image":       in.Image != nil,
		"address":     in.Address != nil,
		"region_id":   in.RegionID != nil,
		"description": in.Description != nil,
	}); err != nil {
		return nil, err
	}

	center := models.EduCenter{
		Name:        *in.Name,
		Phone:       *in.Phone,
		Image:       *in.Image,
		Address:     *in.Address,
		RegionID:    *in.RegionID,
		Description: *in.Description,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.Region{}, center.RegionID, "Region not found"); err != nil {
			return err
		}
		ceoID, err := resolveCEO(tx, actor, in.CEOID)
		if err != nil {
			return err
		}
		center.CEOID = ceoID

		if err := ensureUnique(tx, &models.EduCenter{}, "name", center.Name, nil,
			"This education center name already exists"); err != nil {
			return err
		}
		if err := ensureUnique(tx, &models.EduCenter{}, "phone", center.Phone, nil,
			"This education center phone already exists"); err != nil {
			return err
		}
		if err := checkRelations(tx,
			relationRef{"Subjects", &models.Subject{}, in.Subjects},
			relationRef{"Fields", &models.Field{}, in.Fields},
		); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(&center).Error; err != nil {
			return duplicateOr(err, "This education center name or phone already exists")
		}
		return replaceCenterLinks(tx, center.ID, in.Subjects, in.Fields)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, center.ID)
}

func (s *EduCenterService) Update(ctx context.Context, actor Actor, id uuid.UUID, in EduCenterInput) (*models.EduCenter, error) {
	if err := s.gate.Authorize(ctx, actor, OpEduCenterUpdate, id); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{}
		if in.Name != nil {
			if err := ensureUnique(tx, &models.EduCenter{}, "name", *in.Name, id,
				"This education center name already exists"); err != nil {
				return err
			}
			updates["name"] = *in.Name
		}
		if in.Phone != nil {
			if err := ensureUnique(tx, &models.EduCenter{}, "phone", *in.Phone, id,
				"This education center phone already exists"); err != nil {
				return err
			}
			updates["phone"] = *in.Phone
		}
		if in.RegionID != nil {
			if err := ensureExists(tx, &models.Region{}, *in.RegionID, "Region not found"); err != nil {
				return err
			}
			updates["region_id"] = *in.RegionID
		}
		if in.CEOID != nil && *in.CEOID != actor.ID {
			if !actor.IsStaff() {
				return Forbidden("Only administrators can transfer an education center")
			}
			ceoID, err := resolveCEO(tx, actor, in.CEOID)
			if err != nil {
				return err
			}
			updates["ceo_id"] = ceoID
		}
		if in.Image != nil {
			updates["image"] = *in.Image
		}
		if in.Address != nil {
			updates["address"] = *in.Address
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if err := checkRelations(tx,
			relationRef{"Subjects", &models.Subject{}, in.Subjects},
			relationRef{"Fields", &models.Field{}, in.Fields},
		); err != nil {
			return err
		}

		if len(updates) > 0 {
			if err := tx.Model(&models.EduCenter{ID: id}).Updates(updates).Error; err != nil {
				return duplicateOr(err, "This education center name or phone already exists")
			}
		}
		return replaceCenterLinks(tx, id, in.Subjects, in.Fields)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes the center with its branches and everything attached to them.
func (s *EduCenterService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := s.gate.Authorize(ctx, actor, OpEduCenterDelete, id); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteCenterRows(tx, id)
	}); err != nil {
		return err
	}
	logger.LogBusinessOperation("delete_edu_center", actor.ID.String(), "success", "education center deleted",
		map[string]interface{}{"edu_id": id.String()})
	return nil
}

// deleteCenterRows removes a center, its branches and every row hanging off them.
func deleteCenterRows(tx *gorm.DB, id uuid.UUID) error {
	var branchIDs []uuid.UUID
	if err := tx.Model(&models.Branch{}).Where("edu_id = ?", id).Pluck("id", &branchIDs).Error; err != nil {
		return err
	}
	for _, branchID := range branchIDs {
		if err := deleteBranchRows(tx, branchID); err != nil {
			return err
		}
	}

	steps := []struct {
		model any
		where string
	}{
		{&models.EduCenterSubject{}, "edu_center_id = ?"},
		{&models.EduCenterField{}, "edu_center_id = ?"},
		{&models.Comment{}, "edu_id = ?"},
		{&models.Like{}, "edu_id = ?"},
		{&models.Enrollment{}, "edu_id = ?"},
	}
	for _, step := range steps {
		if err := tx.Where(step.where, id).Delete(step.model).Error; err != nil {
			return err
		}
	}
	return tx.Delete(&models.EduCenter{}, "id = ?", id).Error
}

// replaceCenterLinks deletes then reinserts the link rows of every relation
// array that is present.
func replaceCenterLinks(tx *gorm.DB, centerID uuid.UUID, subjects, fields *[]uint) error {
	if subjects != nil {
		if err := tx.Where("edu_center_id = ?", centerID).Delete(&models.EduCenterSubject{}).Error; err != nil {
			return err
		}
		ids := dedupe(*subjects)
		if len(ids) > 0 {
			rows := make([]models.EduCenterSubject, len(ids))
			for i, id := range ids {
				rows[i] = models.EduCenterSubject{EduCenterID: centerID, SubjectID: id}
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
	}
	if fields != nil {
		if err := tx.Where("edu_center_id = ?", centerID).Delete(&models.EduCenterField{}).Error; err != nil {
			return err
		}
		ids := dedupe(*fields)
		if len(ids) > 0 {
			rows := make([]models.EduCenterField, len(ids))
			for i, id := range ids {
				rows[i] = models.EduCenterField{EduCenterID: centerID, FieldID: id}
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
