package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vnkhanh/educenter-backend/config"
	"github.com/vnkhanh/educenter-backend/logger"
	"github.com/vnkhanh/educenter-backend/models"
	"github.com/vnkhanh/educenter-backend/utils"
)

type RegisterInput struct {
	Fullname string          `json:"fullname" binding:"required,min=3,max=50"`
	Phone    string          `json:"phone" binding:"required,uz_phone"`
	Email    string          `json:"email" binding:"required,email"`
	RegionID uint            `json:"region_id" binding:"required,min=1"`
	Password string          `json:"password" binding:"required,min=8,max=128"`
	Image    string          `json:"image" binding:"omitempty,url"`
	Role     models.UserRole `json:"role" binding:"omitempty,oneof=user ceo"`
}

type LoginInput struct {
	Fullname string `json:"fullname" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshInput struct {
	RefreshToken string `json:"refresh_token"`
}

type SendOTPInput struct {
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required,len=9,numeric"`
}

type VerifyOTPInput struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

type ResetPasswordRequestInput struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordConfirmInput struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// Device identifies the client a login came from.
type Device struct {
	IP        string
	UserAgent string
}

const (
	otpRegister = "register:"
	otpReset    = "reset:"
)

type AuthService struct {
	db     *gorm.DB
	jwt    *utils.JWTManager
	otp    OTPStore
	mailer utils.Mailer
	cfg    config.OTPConfig
}

func NewAuthService(db *gorm.DB, jwt *utils.JWTManager, otp OTPStore, mailer utils.Mailer, cfg config.OTPConfig) *AuthService {
	return &AuthService{db: db, jwt: jwt, otp: otp, mailer: mailer, cfg: cfg}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
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
		Role:     role,
		RegionID: &in.RegionID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUserUnique(tx, &user.Email, &user.Phone, &user.Fullname, nil, registerConflicts); err != nil {
			return err
		}
		if err := ensureExists(tx, &models.Region{}, in.RegionID, "Region not found"); err != nil {
			return err
		}
		return duplicateOr(tx.Omit("Region").Create(&user).Error, "User already exists")
	})
	if err != nil {
		return nil, err
	}
	logger.LogBusinessOperation("register", user.ID.String(), "success", "user registered", map[string]interface{}{
		"role": user.Role,
	})
	return &user, nil
}

// Login checks fullname + password, records a session and returns a token pair.
func (s *AuthService) Login(ctx context.Context, in LoginInput, device Device) (*utils.TokenPair, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("fullname = ?", in.Fullname).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &AuthenticationError{Message: "user not found", Status: http.StatusBadRequest}
		}
		return nil, err
	}
	if !utils.CheckPassword(user.Password, in.Password) {
		return nil, &AuthenticationError{Message: "Invalid password", Status: http.StatusBadRequest}
	}

	pair, err := s.jwt.GenerateTokenPair(user.ID.String(), string(user.Role))
	if err != nil {
		return nil, err
	}

	deviceData, err := json.Marshal(map[string]string{"user_agent": device.UserAgent})
	if err != nil {
		return nil, err
	}
	session := models.Session{UserID: user.ID, IPID: device.IP, DeviceData: datatypes.JSON(deviceData)}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, err
	}
	logger.LogBusinessOperation("login", user.ID.String(), "success", "user logged in", map[string]interface{}{
		"ip": device.IP,
	})
	return pair, nil
}

// Refresh issues a new access token for a valid refresh token. The role is
// re-read so a demoted user does not keep stale privileges.
func (s *AuthService) Refresh(ctx context.Context, in RefreshInput) (string, error) {
	if in.RefreshToken == "" {
		return "", NewValidationError("refresh_token is not provided")
	}
	invalid := &AuthenticationError{Message: "Invalid refresh token", Status: http.StatusBadRequest}
	claims, err := s.jwt.ValidateRefreshToken(in.RefreshToken)
	if err != nil {
		return "", invalid
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return "", invalid
	}
	var user models.User
	if err := s.db.WithContext(ctx).Select("id", "role").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", invalid
		}
		return "", err
	}
	return s.jwt.GenerateAccessToken(user.ID.String(), string(user.Role))
}

// SendOTP mails a registration code to an address that is not registered yet.
func (s *AuthService) SendOTP(ctx context.Context, in SendOTPInput) error {
	email := strings.ToLower(in.Email)
	phone := "+998" + in.Phone
	if err := checkUserUnique(s.db.WithContext(ctx), &email, &phone, nil, nil, registerConflicts); err != nil {
		return err
	}
	return s.issue(ctx, otpRegister+email, email, "Your verification code")
}

// VerifyOTP reports whether code matches the last code sent to the address.
func (s *AuthService) VerifyOTP(ctx context.Context, in VerifyOTPInput) (bool, error) {
	email := strings.ToLower(in.Email)
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, NewValidationError("User already exists")
	}
	return s.otp.Consume(ctx, otpRegister+email, in.OTP)
}

func (s *AuthService) RequestPasswordReset(ctx context.Context, in ResetPasswordRequestInput) error {
	email := strings.ToLower(in.Email)
	var user models.User
	if err := s.db.WithContext(ctx).Select("id").Where("email = ?", email).First(&user).Error; err != nil {
		return notFoundOr(err, "User not found")
	}
	return s.issue(ctx, otpReset+email, email, "Password reset code")
}

func (s *AuthService) ConfirmPasswordReset(ctx context.Context, in ResetPasswordConfirmInput) error {
	email := strings.ToLower(in.Email)
	ok, err := s.otp.Consume(ctx, otpReset+email, in.OTP)
	if err != nil {
		return err
	}
	if !ok {
		return NewValidationError("Invalid or expired code")
	}
	hash, err := utils.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Update("password", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Message: "User not found"}
	}
	return nil
}

func (s *AuthService) issue(ctx context.Context, key, email, subject string) error {
	code, err := GenerateOTP(s.cfg.Digits)
	if err != nil {
		return err
	}
	if err := s.otp.Save(ctx, key, code, s.cfg.TTL); err != nil {
		return err
	}
	body := fmt.Sprintf("<p>Your code is <b>%s</b>. It expires in %s.</p>", code, s.cfg.TTL.Round(time.Second))
	if err := s.mailer.Send(ctx, email, subject, body); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	return nil
}

// userConflicts holds the messages reported for each duplicated user column.
type userConflicts struct {
	email, phone, fullname string
}

var (
	registerConflicts = userConflicts{
		email:    "Email already exists",
		phone:    "Phone already exists",
		fullname: "Fullname already exists",
	}
	updateConflicts = userConflicts{
		email:    "Email must be unique",
		phone:    "Phone must be unique",
		fullname: "Fullname must be unique",
	}
)

// checkUserUnique checks every given column and reports all conflicts at once.
func checkUserUnique(tx *gorm.DB, email, phone, fullname *string, exclude *uuid.UUID, msgs userConflicts) error {
	checks := []struct {
		column string
		value  *string
		msg    string
	}{
		{"email", email, msgs.email},
		{"phone", phone, msgs.phone},
		{"fullname", fullname, msgs.fullname},
	}
	var messages []string
	for _, c := range checks {
		if c.value == nil {
			continue
		}
		var excluded any
		if exclude != nil {
			excluded = *exclude
		}
		err := ensureUnique(tx, &models.User{}, c.column, *c.value, excluded, c.msg)
		if err == nil {
			continue
		}
		var v *ValidationError
		if errors.As(err, &v) {
			messages = append(messages, v.Messages...)
			continue
		}
		return err
	}
	if len(messages) > 0 {
		return NewValidationError(messages...)
	}
	return nil
}
