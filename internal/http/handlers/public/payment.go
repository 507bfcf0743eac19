package public

import (
	"strings"

	"github.com/carenation/backend/internal/http/response"

	"github.com/gin-gonic/gin"
)

// KhaltiInitiateRequest checkout start
type KhaltiInitiateRequest struct {
	ReturnURL string `json:"return_url" binding:"required"`
}

// KhaltiVerifyRequest checkout settle
type KhaltiVerifyRequest struct {
	Pidx string `json:"pidx" binding:"required"`
}

// KhaltiInitiate opens a gateway checkout session for the caller's cart
func (h *Handler) KhaltiInitiate(c *gin.Context) {
	uid, ok := getDistributorID(c)
	if !ok {
		return
	}
	var req KhaltiInitiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	result, err := h.KhaltiService.Initiate(c.Request.Context(), uid, strings.TrimSpace(req.ReturnURL))
	if err != nil {
		respondKhaltiError(c, err)
		return
	}
	response.Success(c, result)
}

// KhaltiVerify settles a checkout session after the gateway redirect.
// Safe to call more than once for the same pidx.
func (h *Handler) KhaltiVerify(c *gin.Context) {
	uid, ok := getDistributorID(c)
	if !ok {
		return
	}
	var req KhaltiVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	result, err := h.KhaltiService.Verify(c.Request.Context(), uid, strings.TrimSpace(req.Pidx))
	if err != nil {
		respondKhaltiError(c, err)
		return
	}
	response.Success(c, result)
}
