package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/educenter-backend/models"
)

// Actor is the authenticated caller.
type Actor struct {
	ID   uuid.UUID
	Role models.UserRole
}

func (a Actor) IsStaff() bool { return a.Role.IsStaff() }

// Ownership is what a resolver knows about a row: its author, and the CEO of
// the education center it belongs to. Either may be nil.
type Ownership struct {
	UserID    *uuid.UUID
	CenterCEO *uuid.UUID
}

// OwnerResolver loads the ownership of a row. A missing row is a NotFoundError;
// a missing parent leaves CenterCEO nil so the check fails closed.
type OwnerResolver func(ctx context.Context, db *gorm.DB, id any) (Ownership, error)

// Gate applies the permission table.
type Gate struct {
	db          *gorm.DB
	permissions map[Operation]Permission
	resolvers   map[Resource]OwnerResolver
}

func NewGate(db *gorm.DB, permissions map[Operation]Permission) *Gate {
	if permissions == nil {
		permissions = DefaultPermissions()
	}
	return &Gate{
		db:          db,
		permissions: permissions,
		resolvers: map[Resource]OwnerResolver{
			ResEduCenter:  resolveEduCenter,
			ResBranch:     resolveBranch,
			ResComment:    resolveComment,
			ResLike:       resolveLike,
			ResEnrollment: resolveEnrollment,
			ResResource:   resolveResource,
			ResUser:       resolveUser,
			ResSession:    resolveSession,
		},
	}
}

// WithDB returns a copy of the gate reading through db, typically an open transaction.
func (g *Gate) WithDB(db *gorm.DB) *Gate {
	cp := *g
	cp.db = db
	return &cp
}

// Permission returns the table entry for op. Unknown operations are denied to everyone.
func (g *Gate) Permission(op Operation) Permission {
	p, ok := g.permissions[op]
	if !ok {
		return Permission{Roles: []models.UserRole{}}
	}
	return p
}

// Authorize runs the role check and, when the operation declares an owner,
// the ownership check for the row identified by id.
func (g *Gate) Authorize(ctx context.Context, actor Actor, op Operation, id any) error {
	p := g.Permission(op)
	if !p.Admits(actor.Role) {
		return Forbidden("Access denied")
	}
	if p.Owner == "" {
		return nil
	}
	return g.checkOwner(ctx, actor, p.Owner, id, p.CEOModerates)
}

// RequireOwner checks ownership of a parent row, e.g. the center a new branch is added to.
func (g *Gate) RequireOwner(ctx context.Context, actor Actor, res Resource, id any) error {
	return g.checkOwner(ctx, actor, res, id, false)
}

func (g *Gate) checkOwner(ctx context.Context, actor Actor, res Resource, id any, ceoModerates bool) error {
	resolve, ok := g.resolvers[res]
	if !ok {
		return fmt.Errorf("no ownership resolver for %s", res)
	}
	owner, err := resolve(ctx, g.db.WithContext(ctx), id)
	if err != nil {
		return err
	}
	if actor.IsStaff() {
		return nil
	}
	if owner.UserID != nil && *owner.UserID == actor.ID {
		return nil
	}
	// Center and branch rows have no author: their CEO owns them.
	ceoOwns := owner.UserID == nil || ceoModerates
	if ceoOwns && actor.Role == models.RoleCEO && owner.CenterCEO != nil && *owner.CenterCEO == actor.ID {
		return nil
	}
	return errNotOwner
}

func centerCEO(db *gorm.DB, eduID *uuid.UUID) (*uuid.UUID, error) {
	if eduID == nil {
		return nil, nil
	}
	var center models.EduCenter
	err := db.Select("id", "ceo_id").First(&center, "id = ?", *eduID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &center.CEOID, nil
}

func branchCenterCEO(db *gorm.DB, branchID *uuid.UUID) (*uuid.UUID, error) {
	if branchID == nil {
		return nil, nil
	}
	var branch models.Branch
	err := db.Select("id", "edu_id").First(&branch, "id = ?", *branchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return centerCEO(db, &branch.EduID)
}

func resolveEduCenter(_ context.Context, db *gorm.DB, id any) (Ownership, error) {
	var center models.EduCenter
	if err := db.Select("id", "ceo_id").First(&center, "id = ?", id).Error; err != nil {
		return Ownership{}, notFoundOr(err, "Education center not found")
	}
	return Ownership{CenterCEO: &center.CEOID}, nil
}

func resolveBranch(_ context.Context, db *gorm.DB, id any) (Ownership, error) {
	var branch models.Branch
	if err := db.Select("id", "edu_id").First(&branch, "id = ?", id).Error; err != nil {
		return Ownership{}, notFoundOr(err, "Branch not found")
	}
	ceo, err := centerCEO(db, &branch.EduID)
	return Ownership{CenterCEO: ceo}, err
}

// targetCEO resolves the center CEO for rows pointing at a center or a branch.
func targetCEO(db *gorm.DB, eduID, branchID *uuid.UUID) (*uuid.UUID, error) {
	if eduID != nil {
		return centerCEO(db, eduID)
	}
	return branchCenterCEO(db, branchID)
}

func resolveComment(_ context.Context, db *gorm.DB, id any) (Ownership, error) {
	var comment models.Comment
	if err := db.First(&comment, "id = ?", id).Error; err != nil {
		return Ownership{}, notFoundOr(err, "Comment not found")
	}
	ceo, err := targetCEO(db, comment.EduID, comment.BranchID)
	return Ownership{UserID: &comment.UserID, CenterCEO: ceo}, err
}

func resolveLike(_ context.Context, db *gorm.DB, id any) (Ownership, error) {
	var like models.Like
	if err := db.First(&like, "id = ?", id).Error; err != nil {
		return Ownership{}, notFoundOr(err, "Like not found")
	}
	ceo, err := targetCEO(db, like.EduID, like.BranchID)
	return Ownership{UserID: &like.UserID, CenterCEO: ceo}, err
}

func resolveEnrollment(_ context.Context, db *gorm.DB, id any) (Ownership, error) {
	var enrollment models.Enrollment
	if err := db.First(&enrollment, "id = ?", id).Error; err != nil {
		return Ownership{}, notFoundOr(err, "Enrollment not found")
	}
	ceo, err := centerCEO(db, &enrollment.EduID)
	return Ownership{UserID: &enrollment.UserID, CenterCEO: ceo}, err
}

func resolveResource(_ context.Context, db *gorm.DB, id any) (Ownership, error) {
	var resource models.Resource
	if err := db.Select("id", "user_id").First(&resource, "id = ?", id).Error; err != nil {
		return Ownership{}, notFoundOr(err, "Resource not found")
	}
	return Ownership{UserID: &resource.UserID}, nil
}

func resolveUser(_ context.Context, db *gorm.DB, id any) (Ownership, error) {
	var user models.User
	if err := db.Select("id").First(&user, "id = ?", id).Error; err != nil {
		return Ownership{}, notFoundOr(err, "User not found")
	}
	return Ownership{UserID: &user.ID}, nil
}

func resolveSession(_ context.Context, db *gorm.DB, id any) (Ownership, error) {
	var session models.Session
	if err := db.Select("id", "user_id").First(&session, "id = ?", id).Error; err != nil {
		return Ownership{}, notFoundOr(err, "Session not found")
	}
	return Ownership{UserID: &session.UserID}, nil
}
