package services

import (
	"context"
	"net/url"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/educenter-backend/models"
)

type CommentInput struct {
	Text     *string    `json:"text" binding:"omitempty,min=5,max=1000"`
	Star     *int       `json:"star" binding:"omitempty,min=1,max=5"`
	EduID    *uuid.UUID `json:"edu_id"`
	BranchID *uuid.UUID `json:"branch_id"`
}

var commentList = ListSpec{
	SortFields: map[string]string{
		"createdAt": "created_at",
		"updatedAt": "updated_at",
		"star":      "star",
	},
	DefaultSort: "createdAt",
	Filters: []Filter{
		{Param: "text", Column: "text", Kind: FilterLike},
		{Param: "star", Column: "star", Kind: FilterInt},
		{Param: "edu_id", Column: "edu_id", Kind: FilterUUID},
		{Param: "branch_id", Column: "branch_id", Kind: FilterUUID},
		{Param: "user_id", Column: "user_id", Kind: FilterUUID},
	},
}

type CommentService struct {
	db   *gorm.DB
	gate *Gate
}

func NewCommentService(db *gorm.DB, gate *Gate) *CommentService {
	return &CommentService{db: db, gate: gate}
}

func withAuthor(tx *gorm.DB) *gorm.DB {
	return tx.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "fullname", "image")
	})
}

func (s *CommentService) List(ctx context.Context, q url.Values) (*Page[models.Comment], error) {
	return List[models.Comment](s.db.WithContext(ctx).Model(&models.Comment{}), q, commentList, withAuthor)
}

func (s *CommentService) Get(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := withAuthor(s.db.WithContext(ctx)).First(&comment, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Comment not found")
	}
	return &comment, nil
}

// ensureTarget checks that the center or branch a row points at exists.
func ensureTarget(tx *gorm.DB, eduID, branchID *uuid.UUID) error {
	if eduID != nil {
		return ensureExists(tx, &models.EduCenter{}, *eduID, "Education center not found")
	}
	return ensureExists(tx, &models.Branch{}, *branchID, "Branch not found")
}

func (s *CommentService) Create(ctx context.Context, actor Actor, in CommentInput) (*models.Comment, error) {
	if err := requireFields(map[string]bool{
		"text": in.Text != nil,
		"star": in.Star != nil,
	}); err != nil {
		return nil, err
	}
	if err := exactlyOne(in.EduID != nil, in.BranchID != nil); err != nil {
		return nil, err
	}

	comment := models.Comment{
		Text:     *in.Text,
		Star:     *in.Star,
		EduID:    in.EduID,
		BranchID: in.BranchID,
		UserID:   actor.ID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureTarget(tx, in.EduID, in.BranchID); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&comment).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, comment.ID)
}

// Update lets only the author (or staff) edit text and star.
func (s *CommentService) Update(ctx context.Context, actor Actor, id uint, in CommentInput) (*models.Comment, error) {
	if err := s.gate.Authorize(ctx, actor, OpCommentUpdate, id); err != nil {
		return nil, err
	}
	if in.EduID != nil || in.BranchID != nil {
		return nil, NewValidationError("The target of a comment cannot be changed")
	}
	updates := map[string]any{}
	if in.Text != nil {
		updates["text"] = *in.Text
	}
	if in.Star != nil {
		updates["star"] = *in.Star
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

func (s *CommentService) Delete(ctx context.Context, actor Actor, id uint) error {
	if err := s.gate.Authorize(ctx, actor, OpCommentDelete, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", id).Error
}
