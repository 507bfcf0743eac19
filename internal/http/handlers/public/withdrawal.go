package public

import (
	"strconv"
	"strings"

	"github.com/carenation/backend/internal/http/response"
	"github.com/carenation/backend/internal/models"
	"github.com/carenation/backend/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateWithdrawalRequest cash-out request
type CreateWithdrawalRequest struct {
	Amount string `json:"amount" binding:"required"`
	Remark string `json:"remark"`
}

// CreateWithdrawal opens a pending cash-out request. The balance is not
// touched until an admin approves it.
func (h *Handler) CreateWithdrawal(c *gin.Context) {
	uid, ok := getDistributorID(c)
	if !ok {
		return
	}
	var req CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid amount", nil)
		return
	}
	request, err := h.WithdrawalService.Create(uid, models.NewMoneyFromDecimal(amount), strings.TrimSpace(req.Remark))
	if err != nil {
		respondWithdrawalError(c, err)
		return
	}
	response.Success(c, request)
}

// ListMyWithdrawals pages through the caller's cash-out history
func (h *Handler) ListMyWithdrawals(c *gin.Context) {
	uid, ok := getDistributorID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	requests, total, err := h.WithdrawalService.List(repository.WithdrawalListFilter{
		Page:          page,
		PageSize:      pageSize,
		DistributorID: uid,
		Status:        strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "withdrawal fetch failed", err)
		return
	}
	response.SuccessWithPage(c, requests, response.BuildPagination(page, pageSize, total))
}
