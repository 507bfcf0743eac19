package public

import (
	"strings"

	"github.com/carenation/backend/internal/http/response"
	"github.com/carenation/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// SignupRequest new member registration
type SignupRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	SponsorID uint   `json:"sponsor_id" binding:"required"`
	Position  string `json:"position" binding:"required"`
}

// LoginRequest member login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest password rotation
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// RedeemImpersonationRequest admin handoff code redemption
type RedeemImpersonationRequest struct {
	Code string `json:"code" binding:"required"`
}

// Signup registers a new distributor under a sponsor slot
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	distributor, token, expiresAt, err := h.DistributorAuthSvc.Signup(service.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FullName:  req.FullName,
		Phone:     req.Phone,
		SponsorID: req.SponsorID,
		Position:  req.Position,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}
	response.Success(c, gin.H{
		"distributor": distributor,
		"token":       token,
		"expires_at":  expiresAt,
	})
}

// Login authenticates a member
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	distributor, token, expiresAt, err := h.DistributorAuthSvc.Login(req.Email, req.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}
	response.Success(c, gin.H{
		"distributor": distributor,
		"token":       token,
		"expires_at":  expiresAt,
	})
}

// Logout invalidates the caller's tokens
func (h *Handler) Logout(c *gin.Context) {
	uid, ok := getDistributorID(c)
	if !ok {
		return
	}
	if err := h.DistributorAuthSvc.Logout(uid); err != nil {
		respondError(c, response.CodeInternal, "logout failed", err)
		return
	}
	response.Success(c, nil)
}

// ChangePassword rotates the caller's password
func (h *Handler) ChangePassword(c *gin.Context) {
	uid, ok := getDistributorID(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if err := h.DistributorAuthSvc.ChangePassword(uid, req.OldPassword, req.NewPassword); err != nil {
		respondAuthError(c, err)
		return
	}
	response.SuccessWithMsg(c, "password changed, please log in again", nil)
}

// Me returns the caller's own profile
func (h *Handler) Me(c *gin.Context) {
	uid, ok := getDistributorID(c)
	if !ok {
		return
	}
	distributor, err := h.DistributorRepo.GetByID(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "profile fetch failed", err)
		return
	}
	if distributor == nil {
		respondError(c, response.CodeNotFound, "account not found", nil)
		return
	}
	response.Success(c, distributor)
}

// RedeemImpersonation burns an admin handoff code and returns a member
// session token. The issuing session id travels in a header so the code in
// the URL alone is useless.
func (h *Handler) RedeemImpersonation(c *gin.Context) {
	var req RedeemImpersonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	sessionID := strings.TrimSpace(c.GetHeader("X-Impersonation-Session"))
	result, err := h.ImpersonationService.Redeem(req.Code, sessionID)
	if err != nil {
		respondImpersonationError(c, err)
		return
	}
	response.Success(c, gin.H{
		"access_token":   result.AccessToken,
		"expires_at_utc": result.ExpiresAt.UTC(),
		"return_url":     result.ReturnURL,
		"distributor":    result.Distributor,
	})
}
