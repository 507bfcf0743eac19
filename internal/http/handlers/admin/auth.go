package admin

import (
	"github.com/carenation/backend/internal/http/response"
	"github.com/carenation/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest admin login
type LoginRequest struct {
	Username      string `json:"username" binding:"required"`
	Password      string `json:"password" binding:"required"`
	CaptchaID     string `json:"captcha_id"`
	CaptchaAnswer string `json:"captcha_answer"`
}

// CreateAdminRequest provision a back-office account
type CreateAdminRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	IsSuper  bool   `json:"is_super"`
}

// ChangePasswordRequest admin password rotation
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// Captcha issues a fresh captcha challenge for the login form
func (h *Handler) Captcha(c *gin.Context) {
	if !h.CaptchaService.Enabled() {
		response.Success(c, gin.H{"enabled": false})
		return
	}
	id, image, err := h.CaptchaService.Generate()
	if err != nil {
		respondError(c, response.CodeInternal, "captcha generation failed", err)
		return
	}
	response.Success(c, gin.H{
		"enabled":    true,
		"captcha_id": id,
		"image":      image,
	})
}

// Login authenticates a back-office account
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	adminUser, token, expiresAt, err := h.AdminAuthService.Login(service.AdminLoginInput{
		Username:      req.Username,
		Password:      req.Password,
		CaptchaID:     req.CaptchaID,
		CaptchaAnswer: req.CaptchaAnswer,
	})
	if err != nil {
		respondAdminAuthError(c, err)
		return
	}
	response.Success(c, gin.H{
		"admin":      adminUser,
		"token":      token,
		"expires_at": expiresAt,
	})
}

// CreateAdmin provisions a new back-office account
func (h *Handler) CreateAdmin(c *gin.Context) {
	var req CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	adminUser, err := h.AdminAuthService.CreateAdmin(req.Username, req.Password, req.IsSuper)
	if err != nil {
		respondAdminAuthError(c, err)
		return
	}
	response.Success(c, adminUser)
}

// ChangePassword rotates the caller's password and invalidates open sessions
func (h *Handler) ChangePassword(c *gin.Context) {
	aid, ok := getAdminID(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if err := h.AdminAuthService.ChangePassword(aid, req.OldPassword, req.NewPassword); err != nil {
		respondAdminAuthError(c, err)
		return
	}
	response.SuccessWithMsg(c, "password changed, please log in again", nil)
}
