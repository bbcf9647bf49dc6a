package services

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/educenter-backend/models"
)

// EnrollmentInput registers interest in a center or one of its branches.
// edu_id is derived from branch_id when only the branch is given.
type EnrollmentInput struct {
	Date     *time.Time `json:"date"`
	EduID    *uuid.UUID `json:"edu_id"`
	BranchID *uuid.UUID `json:"branch_id"`
}

var enrollmentList = ListSpec{
	SortFields: map[string]string{
		"createdAt": "created_at",
		"updatedAt": "updated_at",
		"date":      "date",
	},
	DefaultSort: "createdAt",
	Filters: []Filter{
		{Param: "edu_id", Column: "edu_id", Kind: FilterUUID},
		{Param: "branch_id", Column: "branch_id", Kind: FilterUUID},
		{Param: "user_id", Column: "user_id", Kind: FilterUUID},
	},
}

type EnrollmentService struct {
	db   *gorm.DB
	gate *Gate
}

func NewEnrollmentService(db *gorm.DB, gate *Gate) *EnrollmentService {
	return &EnrollmentService{db: db, gate: gate}
}

func withEnrollmentTargets(tx *gorm.DB) *gorm.DB {
	return tx.Preload("EduCenter").Preload("Branch").Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "fullname", "email", "phone")
	})
}

// List scopes rows by role: staff see everything, a ceo sees enrollments of
// their own centers and their own, a user sees their own.
func (s *EnrollmentService) List(ctx context.Context, actor Actor, q url.Values) (*Page[models.Enrollment], error) {
	db := s.db.WithContext(ctx).Model(&models.Enrollment{})
	switch {
	case actor.IsStaff():
	case actor.Role == models.RoleCEO:
		owned := s.db.Model(&models.EduCenter{}).Select("id").Where("ceo_id = ?", actor.ID)
		db = db.Where("user_id = ? OR edu_id IN (?)", actor.ID, owned)
	default:
		db = db.Where("user_id = ?", actor.ID)
	}
	return List[models.Enrollment](db, q, enrollmentList, withEnrollmentTargets)
}

func (s *EnrollmentService) Mine(ctx context.Context, actor Actor, q url.Values) (*Page[models.Enrollment], error) {
	db := s.db.WithContext(ctx).Model(&models.Enrollment{}).Where("user_id = ?", actor.ID)
	return List[models.Enrollment](db, q, enrollmentList, withEnrollmentTargets)
}

func (s *EnrollmentService) Get(ctx context.Context, actor Actor, id uint) (*models.Enrollment, error) {
	if err := s.gate.Authorize(ctx, actor, OpEnrollmentGet, id); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *EnrollmentService) load(ctx context.Context, id uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := withEnrollmentTargets(s.db.WithContext(ctx)).First(&enrollment, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Enrollment not found")
	}
	return &enrollment, nil
}

// resolveTarget validates edu/branch and returns the center the enrollment belongs to.
func resolveTarget(tx *gorm.DB, eduID, branchID *uuid.UUID) (uuid.UUID, error) {
	if eduID == nil && branchID == nil {
		return uuid.Nil, NewValidationError("Provide edu_id or branch_id")
	}
	if branchID != nil {
		var branch models.Branch
		if err := tx.Select("id", "edu_id").First(&branch, "id = ?", *branchID).Error; err != nil {
			return uuid.Nil, notFoundOr(err, "Branch not found")
		}
		if eduID != nil && *eduID != branch.EduID {
			return uuid.Nil, NewValidationError("The branch does not belong to this education center")
		}
		return branch.EduID, nil
	}
	if err := ensureExists(tx, &models.EduCenter{}, *eduID, "Education center not found"); err != nil {
		return uuid.Nil, err
	}
	return *eduID, nil
}

func (s *EnrollmentService) Create(ctx context.Context, actor Actor, in EnrollmentInput) (*models.Enrollment, error) {
	if err := requireFields(map[string]bool{"date": in.Date != nil}); err != nil {
		return nil, err
	}
	enrollment := models.Enrollment{UserID: actor.ID, BranchID: in.BranchID, Date: *in.Date}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		eduID, err := resolveTarget(tx, in.EduID, in.BranchID)
		if err != nil {
			return err
		}
		enrollment.EduID = eduID
		return tx.Omit(clause.Associations).Create(&enrollment).Error
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, enrollment.ID)
}

func (s *EnrollmentService) Update(ctx context.Context, actor Actor, id uint, in EnrollmentInput) (*models.Enrollment, error) {
	if err := s.gate.Authorize(ctx, actor, OpEnrollmentUpdate, id); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{}
		if in.Date != nil {
			updates["date"] = *in.Date
		}
		if in.EduID != nil || in.BranchID != nil {
			eduID, err := resolveTarget(tx, in.EduID, in.BranchID)
			if err != nil {
				return err
			}
			updates["edu_id"] = eduID
			updates["branch_id"] = in.BranchID
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.Enrollment{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *EnrollmentService) Delete(ctx context.Context, actor Actor, id uint) error {
	if err := s.gate.Authorize(ctx, actor, OpEnrollmentDelete, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&models.Enrollment{}, "id = ?", id).Error
}
