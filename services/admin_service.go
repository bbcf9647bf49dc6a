package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/educenter-backend/models"
	"github.com/vnkhanh/educenter-backend/utils"
)

type AdminInput struct {
	Fullname string `json:"fullname" binding:"required,min=3,max=50"`
	Phone    string `json:"phone" binding:"required,uz_phone"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	RegionID *uint  `json:"region_id" binding:"omitempty,min=1"`
	Image    string `json:"image" binding:"omitempty,url"`
}

// AdminService manages accounts with the admin role.
type AdminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

func (s *AdminService) admins(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RoleAdmin)
}

func (s *AdminService) List(ctx context.Context, q url.Values) (*Page[models.User], error) {
	return List[models.User](s.admins(ctx), q, userList, nil)
}

func (s *AdminService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.admins(ctx).Preload("Region").First(&user, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Admin not found")
	}
	return &user, nil
}

func (s *AdminService) Create(ctx context.Context, in AdminInput) (*models.User, error) {
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Fullname: in.Fullname,
		Email:    strings.ToLower(in.Email),
		Phone:    in.Phone,
		Password: hash,
		Image:    in.Image,
		Role:     models.RoleAdmin,
		RegionID: in.RegionID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUserUnique(tx, &user.Email, &user.Phone, &user.Fullname, nil, registerConflicts); err != nil {
			return err
		}
		if in.RegionID != nil {
			if err := ensureExists(tx, &models.Region{}, *in.RegionID, "Region not found"); err != nil {
				return err
			}
		}
		return duplicateOr(tx.Omit("Region").Create(&user).Error, "User already exists")
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update applies a partial update. The role cannot be changed here.
func (s *AdminService) Update(ctx context.Context, id uuid.UUID, in UserUpdateInput) (*models.User, error) {
	in.Role = nil
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ? AND role = ?", id, models.RoleAdmin).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return &NotFoundError{Message: "Admin not found"}
		}
		return updateUserRow(tx, id, in)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *AdminService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ? AND role = ?", id, models.RoleAdmin).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return &NotFoundError{Message: "Admin not found"}
		}
		return deleteUserRows(tx, id)
	})
}
