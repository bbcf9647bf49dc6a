package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/educenter-backend/services"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

func (h *AuthController) Register(c *gin.Context) {
	var in services.RegisterInput
	if !bind(c, &in) {
		return
	}
	user, err := h.auth.Register(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *AuthController) Login(c *gin.Context) {
	var in services.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, services.NewValidationError("please enter fullname and password"))
		return
	}
	device := services.Device{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
	pair, err := h.auth.Login(c.Request.Context(), in, device)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *AuthController) Refresh(c *gin.Context) {
	var in services.RefreshInput
	if !bind(c, &in) {
		return
	}
	token, err := h.auth.Refresh(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

func (h *AuthController) SendOTP(c *gin.Context) {
	var in services.SendOTPInput
	if !bind(c, &in) {
		return
	}
	if err := h.auth.SendOTP(c.Request.Context(), in); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "The otp is sent to your email"})
}

func (h *AuthController) VerifyOTP(c *gin.Context) {
	var in services.VerifyOTPInput
	if !bind(c, &in) {
		return
	}
	verified, err := h.auth.VerifyOTP(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": verified})
}

func (h *AuthController) RequestPasswordReset(c *gin.Context) {
	var in services.ResetPasswordRequestInput
	if !bind(c, &in) {
		return
	}
	if err := h.auth.RequestPasswordReset(c.Request.Context(), in); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "The reset code is sent to your email"})
}

func (h *AuthController) ConfirmPasswordReset(c *gin.Context) {
	var in services.ResetPasswordConfirmInput
	if !bind(c, &in) {
		return
	}
	if err := h.auth.ConfirmPasswordReset(c.Request.Context(), in); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
