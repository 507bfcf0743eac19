package public

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

// TransferRequest peer-to-peer balance transfer
type TransferRequest struct {
	ToID     uint   `json:"to_id" binding:"required"`
	Amount   string `json:"amount" binding:"required"`
	Password string `json:"password" binding:"required"`
	Remark   string `json:"remark"`
}

// GetMyBalance returns the caller's current balance
func (h *Handler) GetMyBalance(c *gin.Context) {
	uid, ok := getDistributorID(c)
	if !ok {
		return
	}
	balance, err := h.WalletService.Balance(uid)
	if err != nil {
		respondWalletError(c, err)
		return
	}
	response.Success(c, gin.H{"balance": balance})
}

// ListMyWalletTransactions pages through the caller's ledger
func (h *Handler) ListMyWalletTransactions(c *gin.Context) {
	uid, ok := getDistributorID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	transactions, total, err := h.WalletService.ListTransactions(repository.WalletTransactionListFilter{
		Page:          page,
		PageSize:      pageSize,
		DistributorID: uid,
		Type:          strings.TrimSpace(c.Query("type")),
		Direction:     strings.TrimSpace(c.Query("direction")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "ledger fetch failed", err)
		return
	}
	response.SuccessWithPage(c, transactions, response.BuildPagination(page, pageSize, total))
}

// Transfer moves balance to another member. The password is re-checked
// even though the caller already holds a valid token.
func (h *Handler) Transfer(c *gin.Context) {
	uid, ok := getDistributorID(c)
	if !ok {
		return
	}
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid amount", nil)
		return
	}
	result, err := h.TransferService.Transfer(service.TransferInput{
		FromID:   uid,
		ToID:     req.ToID,
		Amount:   models.NewMoneyFromDecimal(amount),
		Password: req.Password,
		Remark:   strings.TrimSpace(req.Remark),
	})
	if err != nil {
		respondWalletError(c, err)
		return
	}
	response.Success(c, gin.H{
		"balance":     result.FromBalance,
		"transaction": result.OutTxn,
	})
}
