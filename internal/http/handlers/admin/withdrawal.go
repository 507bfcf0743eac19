package admin

import (
	"strconv"
	"strings"

	"github.com/carenation/backend/internal/http/response"
	"github.com/carenation/backend/internal/models"
	"github.com/carenation/backend/internal/repository"
	"github.com/carenation/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ApproveWithdrawalRequest settle a pending cash-out
type ApproveWithdrawalRequest struct {
	Amount   string `json:"amount" binding:"required"`
	ProofURL string `json:"proof_url" binding:"required"`
	Remark   string `json:"remark"`
}

// RejectWithdrawalRequest decline a pending cash-out
type RejectWithdrawalRequest struct {
	Remark string `json:"remark" binding:"required"`
}

// ReplaceProofRequest swap the payout proof on a paid request
type ReplaceProofRequest struct {
	ProofURL string `json:"proof_url" binding:"required"`
}

// ListWithdrawals pages through cash-out requests across all members
func (h *Handler) ListWithdrawals(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	distributorID, _ := strconv.ParseUint(c.Query("distributor_id"), 10, 32)

	requests, total, err := h.WithdrawalService.List(repository.WithdrawalListFilter{
		Page:          page,
		PageSize:      pageSize,
		DistributorID: uint(distributorID),
		Status:        strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "withdrawal fetch failed", err)
		return
	}
	response.SuccessWithPage(c, requests, response.BuildPagination(page, pageSize, total))
}

// ApproveWithdrawal settles a pending request: debits the member's balance
// and writes the payout record in one transaction.
func (h *Handler) ApproveWithdrawal(c *gin.Context) {
	aid, ok := getAdminID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid request id", nil)
		return
	}
	var req ApproveWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid amount", nil)
		return
	}
	payment, err := h.WithdrawalService.Approve(service.AdminApproveWithdrawalInput{
		RequestID: uint(id),
		AdminID:   aid,
		Amount:    models.NewMoneyFromDecimal(amount),
		ProofURL:  strings.TrimSpace(req.ProofURL),
		Remark:    strings.TrimSpace(req.Remark),
	})
	if err != nil {
		respondWithdrawalAdminError(c, err)
		return
	}
	response.Success(c, payment)
}

// RejectWithdrawal declines a pending request with a reason
func (h *Handler) RejectWithdrawal(c *gin.Context) {
	aid, ok := getAdminID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid request id", nil)
		return
	}
	var req RejectWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	request, err := h.WithdrawalService.Reject(uint(id), aid, strings.TrimSpace(req.Remark))
	if err != nil {
		respondWithdrawalAdminError(c, err)
		return
	}
	response.Success(c, request)
}

// ReplaceWithdrawalProof swaps the payout proof on an already-paid request
func (h *Handler) ReplaceWithdrawalProof(c *gin.Context) {
	aid, ok := getAdminID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid request id", nil)
		return
	}
	var req ReplaceProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	payment, err := h.WithdrawalService.ReplaceProof(uint(id), aid, strings.TrimSpace(req.ProofURL))
	if err != nil {
		respondWithdrawalAdminError(c, err)
		return
	}
	response.Success(c, payment)
}

// ListPayouts pages through payout records
func (h *Handler) ListPayouts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	paidToID, _ := strconv.ParseUint(c.Query("paid_to_id"), 10, 32)

	payouts, total, err := h.WithdrawalService.ListPayouts(repository.PaymentListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		PaidToID: uint(paidToID),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "payout fetch failed", err)
		return
	}
	response.SuccessWithPage(c, payouts, response.BuildPagination(page, pageSize, total))
}
