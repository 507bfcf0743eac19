package admin

import (
	"strconv"
	"strings"

	"github.com/carenation/backend/internal/http/response"
	"github.com/carenation/backend/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListKhaltiPayments pages through gateway checkout records
func (h *Handler) ListKhaltiPayments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	distributorID, _ := strconv.ParseUint(c.Query("distributor_id"), 10, 32)

	records, total, err := h.KhaltiService.List(repository.KhaltiPaymentListFilter{
		Page:          page,
		PageSize:      pageSize,
		DistributorID: uint(distributorID),
		Status:        strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "payment fetch failed", err)
		return
	}
	response.SuccessWithPage(c, records, response.BuildPagination(page, pageSize, total))
}

// ReconcileKhalti sweeps stale checkout sessions against the gateway now
// instead of waiting for the periodic job.
func (h *Handler) ReconcileKhalti(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	settled, err := h.KhaltiService.ReconcileStale(c.Request.Context(), limit)
	if err != nil {
		respondError(c, response.CodeInternal, "reconciliation failed", err)
		return
	}
	response.Success(c, gin.H{"settled": settled})
}
