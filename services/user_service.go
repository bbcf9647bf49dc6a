package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/educenter-backend/logger"
	"github.com/vnkhanh/educenter-backend/models"
	"github.com/vnkhanh/educenter-backend/utils"
)

// UserUpdateInput is a partial profile update. Only staff may set Role.
type UserUpdateInput struct {
	Fullname *string          `json:"fullname" binding:"omitempty,min=3,max=50"`
	Phone    *string          `json:"phone" binding:"omitempty,uz_phone"`
	Email    *string          `json:"email" binding:"omitempty,email"`
	RegionID *uint            `json:"region_id" binding:"omitempty,min=1"`
	Password *string          `json:"password" binding:"omitempty,min=8,max=128"`
	Image    *string          `json:"image" binding:"omitempty,url"`
	Role     *models.UserRole `json:"role" binding:"omitempty,oneof=user ceo admin superadmin"`
}

var userList = ListSpec{
	SortFields: map[string]string{
		"fullname":  "fullname",
		"email":     "email",
		"createdAt": "created_at",
		"updatedAt": "updated_at",
	},
	DefaultSort: "fullname",
	Filters: []Filter{
		{Param: "fullname", Column: "fullname", Kind: FilterLike},
		{Param: "region_id", Column: "region_id", Kind: FilterUint},
		{Param: "role", Column: "role", Kind: FilterEqual},
	},
}

type UserService struct {
	db   *gorm.DB
	gate *Gate
}

func NewUserService(db *gorm.DB, gate *Gate) *UserService {
	return &UserService{db: db, gate: gate}
}

func (s *UserService) List(ctx context.Context, q url.Values) (*Page[models.User], error) {
	return List[models.User](s.db.WithContext(ctx).Model(&models.User{}), q, userList, func(tx *gorm.DB) *gorm.DB {
		return tx.Preload("Region")
	})
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Region").First(&user, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	return &user, nil
}

func (s *UserService) Me(ctx context.Context, actor Actor) (*models.User, error) {
	return s.Get(ctx, actor.ID)
}

func (s *UserService) Update(ctx context.Context, actor Actor, id uuid.UUID, in UserUpdateInput) (*models.User, error) {
	if err := s.gate.Authorize(ctx, actor, OpUserUpdate, id); err != nil {
		return nil, err
	}
	if err := s.guardSuperadmin(ctx, actor, id); err != nil {
		return nil, err
	}
	if in.Role != nil {
		if !actor.IsStaff() {
			return nil, Forbidden("You cannot update role")
		}
		if *in.Role == models.RoleSuperAdmin && actor.Role != models.RoleSuperAdmin {
			return nil, Forbidden("Only a superadmin can grant the superadmin role")
		}
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return updateUserRow(tx, id, in)
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// guardSuperadmin keeps superadmin accounts out of reach of every other role,
// staff included.
func (s *UserService) guardSuperadmin(ctx context.Context, actor Actor, id uuid.UUID) error {
	if actor.Role == models.RoleSuperAdmin {
		return nil
	}
	var target models.User
	if err := s.db.WithContext(ctx).Select("id", "role").First(&target, "id = ?", id).Error; err != nil {
		return notFoundOr(err, "User not found")
	}
	if target.Role == models.RoleSuperAdmin {
		return Forbidden("Only a superadmin can modify a superadmin account")
	}
	return nil
}

// UpdateMe applies a partial update to the caller's own profile.
func (s *UserService) UpdateMe(ctx context.Context, actor Actor, in UserUpdateInput) (*models.User, error) {
	return s.Update(ctx, actor, actor.ID, in)
}

func updateUserRow(tx *gorm.DB, id uuid.UUID, in UserUpdateInput) error {
	if in.Email != nil {
		lower := strings.ToLower(*in.Email)
		in.Email = &lower
	}
	if err := checkUserUnique(tx, in.Email, in.Phone, in.Fullname, &id, updateConflicts); err != nil {
		return err
	}
	updates := map[string]any{}
	if in.RegionID != nil {
		if err := ensureExists(tx, &models.Region{}, *in.RegionID, "Region not found"); err != nil {
			return err
		}
		updates["region_id"] = *in.RegionID
	}
	if in.Password != nil {
		hash, err := utils.HashPassword(*in.Password)
		if err != nil {
			return err
		}
		updates["password"] = hash
	}
	if in.Role != nil {
		updates["role"] = *in.Role
	}
	for column, value := range map[string]*string{
		"fullname": in.Fullname,
		"phone":    in.Phone,
		"email":    in.Email,
		"image":    in.Image,
	} {
		if value != nil {
			updates[column] = *value
		}
	}
	if len(updates) == 0 {
		return nil
	}
	err := tx.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
	return duplicateOr(err, "Fullname, email or phone already in use")
}

// Delete removes the user with everything they authored and the centers they own.
func (s *UserService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := s.gate.Authorize(ctx, actor, OpUserDelete, id); err != nil {
		return err
	}
	if err := s.guardSuperadmin(ctx, actor, id); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteUserRows(tx, id)
	}); err != nil {
		return err
	}
	logger.LogBusinessOperation("delete_user", actor.ID.String(), "success", "user deleted",
		map[string]interface{}{"deleted_user_id": id.String()})
	return nil
}

func deleteUserRows(tx *gorm.DB, id uuid.UUID) error {
	var centerIDs []uuid.UUID
	if err := tx.Model(&models.EduCenter{}).Where("ceo_id = ?", id).Pluck("id", &centerIDs).Error; err != nil {
		return err
	}
	for _, centerID := range centerIDs {
		if err := deleteCenterRows(tx, centerID); err != nil {
			return err
		}
	}
	for _, model := range []any{
		&models.Comment{},
		&models.Like{},
		&models.Enrollment{},
		&models.Resource{},
		&models.Session{},
	} {
		if err := tx.Where("user_id = ?", id).Delete(model).Error; err != nil {
			return err
		}
	}
	return tx.Delete(&models.User{}, "id = ?", id).Error
}
