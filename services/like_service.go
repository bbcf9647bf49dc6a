package services

import (
	"context"
	"net/url"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/educenter-backend/models"
)

type LikeInput struct {
	EduID    *uuid.UUID `json:"edu_id"`
	BranchID *uuid.UUID `json:"branch_id"`
}

const alreadyLiked = "You have already liked this!"

var likeList = ListSpec{
	SortFields:  map[string]string{"createdAt": "created_at"},
	DefaultSort: "createdAt",
	Filters: []Filter{
		{Param: "edu_id", Column: "edu_id", Kind: FilterUUID},
		{Param: "branch_id", Column: "branch_id", Kind: FilterUUID},
		{Param: "user_id", Column: "user_id", Kind: FilterUUID},
	},
}

type LikeService struct {
	db   *gorm.DB
	gate *Gate
}

func NewLikeService(db *gorm.DB, gate *Gate) *LikeService {
	return &LikeService{db: db, gate: gate}
}

func (s *LikeService) List(ctx context.Context, q url.Values) (*Page[models.Like], error) {
	return List[models.Like](s.db.WithContext(ctx).Model(&models.Like{}), q, likeList, nil)
}

func (s *LikeService) Get(ctx context.Context, id uint) (*models.Like, error) {
	var like models.Like
	err := s.db.WithContext(ctx).
		Preload("EduCenter").
		Preload("Branch").
		First(&like, "id = ?", id).Error
	if err != nil {
		return nil, notFoundOr(err, "Like not found")
	}
	return &like, nil
}

func (s *LikeService) Create(ctx context.Context, actor Actor, in LikeInput) (*models.Like, error) {
	if err := exactlyOne(in.EduID != nil, in.BranchID != nil); err != nil {
		return nil, err
	}
	like := models.Like{UserID: actor.ID, EduID: in.EduID, BranchID: in.BranchID}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureTarget(tx, in.EduID, in.BranchID); err != nil {
			return err
		}
		q := tx.Model(&models.Like{}).Where("user_id = ?", actor.ID)
		if in.EduID != nil {
			q = q.Where("edu_id = ?", *in.EduID)
		} else {
			q = q.Where("branch_id = ?", *in.BranchID)
		}
		var count int64
		if err := q.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return NewValidationError(alreadyLiked)
		}
		return duplicateOr(tx.Omit(clause.Associations).Create(&like).Error, alreadyLiked)
	})
	if err != nil {
		return nil, err
	}
	return &like, nil
}

func (s *LikeService) Delete(ctx context.Context, actor Actor, id uint) error {
	if err := s.gate.Authorize(ctx, actor, OpLikeDelete, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&models.Like{}, "id = ?", id).Error
}
