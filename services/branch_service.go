package services

import (
	"context"
	"net/url"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/educenter-backend/models"
)

type BranchInput struct {
	Name     *string    `json:"name" binding:"omitempty,min=3,max=100"`
	Phone    *string    `json:"phone" binding:"omitempty,branch_phone"`
	Image    *string    `json:"image" binding:"omitempty,url"`
	Address  *string    `json:"address" binding:"omitempty,min=5,max=255"`
	RegionID *uint      `json:"region_id" binding:"omitempty,min=1"`
	EduID    *uuid.UUID `json:"edu_id"`
	Subjects *[]uint    `json:"subjects"`
	Fields   *[]uint    `json:"fields"`
}

var branchList = ListSpec{
	SortFields: map[string]string{
		"createdAt": "created_at",
		"updatedAt": "updated_at",
		"name":      "name",
		"address":   "address",
		"region_id": "region_id",
	},
	DefaultSort: "createdAt",
	Filters: []Filter{
		{Param: "name", Column: "branches.name", Kind: FilterLike},
		{Param: "phone", Column: "branches.phone", Kind: FilterLike},
		{Param: "address", Column: "branches.address", Kind: FilterLike},
		{Param: "region_id", Column: "branches.region_id", Kind: FilterUint},
		{Param: "edu_id", Column: "branches.edu_id", Kind: FilterUUID},
		{Param: "subject_id", Column: "branches.id", Kind: FilterUint,
			LinkTable: "branch_subjects", LinkOwner: "branch_id", LinkColumn: "subject_id"},
		{Param: "field_id", Column: "branches.id", Kind: FilterUint,
			LinkTable: "branch_fields", LinkOwner: "branch_id", LinkColumn: "field_id"},
	},
}

type BranchService struct {
	db   *gorm.DB
	gate *Gate
	agg  *Aggregator
}

func NewBranchService(db *gorm.DB, gate *Gate, agg *Aggregator) *BranchService {
	return &BranchService{db: db, gate: gate, agg: agg}
}

func (s *BranchService) List(ctx context.Context, q url.Values) (*Page[models.Branch], error) {
	db := s.db.WithContext(ctx).Model(&models.Branch{})
	page, err := List[models.Branch](db, q, branchList, func(tx *gorm.DB) *gorm.DB {
		return tx.Preload("Region").Preload("Subjects").Preload("Fields")
	})
	if err != nil {
		return nil, err
	}
	if err := s.agg.DecorateBranches(ctx, page.Data); err != nil {
		return nil, err
	}
	return page, nil
}

func (s *BranchService) Get(ctx context.Context, id uuid.UUID) (*models.Branch, error) {
	var branch models.Branch
	err := s.db.WithContext(ctx).
		Preload("Region").
		Preload("EduCenter").
		Preload("Subjects").
		Preload("Fields").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Comments.User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "fullname", "image")
		}).
		First(&branch, "id = ?", id).Error
	if err != nil {
		return nil, notFoundOr(err, "Branch not found")
	}
	branches := []models.Branch{branch}
	if err := s.agg.DecorateBranches(ctx, branches); err != nil {
		return nil, err
	}
	return &branches[0], nil
}

func (s *BranchService) Create(ctx context.Context, actor Actor, in BranchInput) (*models.Branch, error) {
	if err := requireFields(map[string]bool{
		"name":      in.Name != nil,
		"phone":     in.Phone != nil,
		"image":     in.Image != nil,
		"address":   in.Address != nil,
		"region_id": in.RegionID != nil,
		"edu_id":    in.EduID != nil,
	}); err != nil {
		return nil, err
	}

	branch := models.Branch{
		Name:     *in.Name,
		Phone:    *in.Phone,
		Image:    *in.Image,
		Address:  *in.Address,
		RegionID: *in.RegionID,
		EduID:    *in.EduID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.Region{}, branch.RegionID, "Region not found"); err != nil {
			return err
		}
		// Resolves the parent (404) and checks that a ceo owns it (403).
		if err := s.gate.WithDB(tx).RequireOwner(ctx, actor, ResEduCenter, branch.EduID); err != nil {
			return err
		}
		if err := ensureUnique(tx, &models.Branch{}, "name", branch.Name, nil,
			"This branch name already exists"); err != nil {
			return err
		}
		if err := ensureUnique(tx, &models.Branch{}, "phone", branch.Phone, nil,
			"This branch phone already exists"); err != nil {
			return err
		}
		if err := checkRelations(tx,
			relationRef{"Subjects", &models.Subject{}, in.Subjects},
			relationRef{"Fields", &models.Field{}, in.Fields},
		); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(&branch).Error; err != nil {
			return duplicateOr(err, "This branch name or phone already exists")
		}
		return replaceBranchLinks(tx, branch.ID, in.Subjects, in.Fields)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, branch.ID)
}

func (s *BranchService) Update(ctx context.Context, actor Actor, id uuid.UUID, in BranchInput) (*models.Branch, error) {
	if err := s.gate.Authorize(ctx, actor, OpBranchUpdate, id); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{}
		if in.Name != nil {
			if err := ensureUnique(tx, &models.Branch{}, "name", *in.Name, id,
				"This branch name already exists"); err != nil {
				return err
			}
			updates["name"] = *in.Name
		}
		if in.Phone != nil {
			if err := ensureUnique(tx, &models.Branch{}, "phone", *in.Phone, id,
				"This branch phone already exists"); err != nil {
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
		if in.EduID != nil {
			// Moving a branch requires owning the new parent as well.
			if err := s.gate.WithDB(tx).RequireOwner(ctx, actor, ResEduCenter, *in.EduID); err != nil {
				return err
			}
			updates["edu_id"] = *in.EduID
		}
		if in.Image != nil {
			updates["image"] = *in.Image
		}
		if in.Address != nil {
			updates["address"] = *in.Address
		}
		if err := checkRelations(tx,
			relationRef{"Subjects", &models.Subject{}, in.Subjects},
			relationRef{"Fields", &models.Field{}, in.Fields},
		); err != nil {
			return err
		}

		if len(updates) > 0 {
			if err := tx.Model(&models.Branch{ID: id}).Updates(updates).Error; err != nil {
				return duplicateOr(err, "This branch name or phone already exists")
			}
		}
		return replaceBranchLinks(tx, id, in.Subjects, in.Fields)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *BranchService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := s.gate.Authorize(ctx, actor, OpBranchDelete, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteBranchRows(tx, id)
	})
}

// deleteBranchRows removes a branch and every row hanging off it.
func deleteBranchRows(tx *gorm.DB, id uuid.UUID) error {
	steps := []struct {
		model any
		where string
	}{
		{&models.BranchSubject{}, "branch_id = ?"},
		{&models.BranchField{}, "branch_id = ?"},
		{&models.Comment{}, "branch_id = ?"},
		{&models.Like{}, "branch_id = ?"},
		{&models.Enrollment{}, "branch_id = ?"},
	}
	for _, step := range steps {
		if err := tx.Where(step.where, id).Delete(step.model).Error; err != nil {
			return err
		}
	}
	return tx.Delete(&models.Branch{}, "id = ?", id).Error
}

func replaceBranchLinks(tx *gorm.DB, branchID uuid.UUID, subjects, fields *[]uint) error {
	if subjects != nil {
		if err := tx.Where("branch_id = ?", branchID).Delete(&models.BranchSubject{}).Error; err != nil {
			return err
		}
		ids := dedupe(*subjects)
		if len(ids) > 0 {
			rows := make([]models.BranchSubject, len(ids))
			for i, id := range ids {
				rows[i] = models.BranchSubject{BranchID: branchID, SubjectID: id}
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
	}
	if fields != nil {
		if err := tx.Where("branch_id = ?", branchID).Delete(&models.BranchField{}).Error; err != nil {
			return err
		}
		ids := dedupe(*fields)
		if len(ids) > 0 {
			rows := make([]models.BranchField, len(ids))
			for i, id := range ids {
				rows[i] = models.BranchField{BranchID: branchID, FieldID: id}
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
