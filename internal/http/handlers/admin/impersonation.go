package admin

import (
	"errors"
	"strings"

	"github.com/carenation/backend/internal/http/response"
	"github.com/carenation/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// StartImpersonationRequest open a support handoff into a member account
type StartImpersonationRequest struct {
	DistributorID uint   `json:"distributor_id" binding:"required"`
	Reason        string `json:"reason" binding:"required"`
	ReturnURL     string `json:"return_url"`
	SessionID     string `json:"session_id"`
}

// StartImpersonation mints a one-shot handoff code bound to the admin's
// browser session. The session id may come from the body or the
// X-Impersonation-Session header; the header wins when both are present.
func (h *Handler) StartImpersonation(c *gin.Context) {
	aid, ok := getAdminID(c)
	if !ok {
		return
	}
	var req StartImpersonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	sessionID := strings.TrimSpace(c.GetHeader("X-Impersonation-Session"))
	if sessionID == "" {
		sessionID = strings.TrimSpace(req.SessionID)
	}
	result, err := h.ImpersonationService.Start(service.StartImpersonationInput{
		DistributorID: req.DistributorID,
		AdminID:       aid,
		SessionID:     sessionID,
		Reason:        strings.TrimSpace(req.Reason),
		ReturnURL:     strings.TrimSpace(req.ReturnURL),
	})
	if err != nil {
		respondImpersonationAdminError(c, err)
		return
	}
	response.Success(c, result)
}

func respondImpersonationAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrImpersonationTargetNotFound):
		respondError(c, response.CodeNotFound, "member not found", nil)
	case errors.Is(err, service.ErrImpersonationSessionMismatch):
		respondError(c, response.CodeBadRequest, "a session id is required", nil)
	default:
		respondError(c, response.CodeInternal, "impersonation start failed", err)
	}
}
