package admin

import (
	"strconv"
	"strings"

	"github.com/carenation/backend/internal/constants"
	"github.com/carenation/backend/internal/http/response"
	"github.com/carenation/backend/internal/models"
	"github.com/carenation/backend/internal/repository"
	"github.com/carenation/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AdjustWalletRequest manual balance correction
type AdjustWalletRequest struct {
	DistributorID uint   `json:"distributor_id" binding:"required"`
	Direction     string `json:"direction" binding:"required"`
	Amount        string `json:"amount" binding:"required"`
	Reference     string `json:"reference" binding:"required"`
	Remark        string `json:"remark"`
}

// AdjustWallet credits or debits a member's balance outside the normal
// flows. The reference is mandatory so repeated submissions stay idempotent.
func (h *Handler) AdjustWallet(c *gin.Context) {
	var req AdjustWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid amount", nil)
		return
	}
	input := service.WalletChangeInput{
		DistributorID: req.DistributorID,
		Amount:        models.NewMoneyFromDecimal(amount),
		TxnType:       constants.WalletTxnTypeAdminAdjust,
		Reference:     strings.TrimSpace(req.Reference),
		Remark:        strings.TrimSpace(req.Remark),
	}
	var txn *models.WalletTransaction
	switch strings.ToLower(strings.TrimSpace(req.Direction)) {
	case "credit":
		txn, err = h.WalletService.Credit(input)
	case "debit":
		txn, err = h.WalletService.Debit(input)
	default:
		respondError(c, response.CodeBadRequest, "direction must be credit or debit", nil)
		return
	}
	if err != nil {
		respondWalletAdminError(c, err)
		return
	}
	response.Success(c, txn)
}

// ListWalletTransactions pages through the ledger across all members
func (h *Handler) ListWalletTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	distributorID, _ := strconv.ParseUint(c.Query("distributor_id"), 10, 32)
	orderID, _ := strconv.ParseUint(c.Query("order_id"), 10, 32)

	transactions, total, err := h.WalletService.ListTransactions(repository.WalletTransactionListFilter{
		Page:          page,
		PageSize:      pageSize,
		DistributorID: uint(distributorID),
		OrderID:       uint(orderID),
		Type:          strings.TrimSpace(c.Query("type")),
		Direction:     strings.TrimSpace(c.Query("direction")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "ledger fetch failed", err)
		return
	}
	response.SuccessWithPage(c, transactions, response.BuildPagination(page, pageSize, total))
}

// GetWalletBalance returns one member's balance with the ledger-derived sum
// alongside it, so drift is visible at a glance.
func (h *Handler) GetWalletBalance(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid member id", nil)
		return
	}
	balance, err := h.WalletService.Balance(uint(id))
	if err != nil {
		respondWalletAdminError(c, err)
		return
	}
	ledgerSum, err := h.WalletService.LedgerSum(uint(id))
	if err != nil {
		respondWalletAdminError(c, err)
		return
	}
	response.Success(c, gin.H{
		"balance":    balance,
		"ledger_sum": ledgerSum,
	})
}
