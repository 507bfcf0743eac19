package admin

import (
	"strconv"
	"strings"

	"github.com/carenation/backend/internal/http/response"
	"github.com/carenation/backend/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListDistributors pages through member accounts
func (h *Handler) ListDistributors(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	parentID, _ := strconv.ParseUint(c.Query("parent_id"), 10, 32)

	distributors, total, err := h.DistributorRepo.List(repository.DistributorListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Status:   strings.TrimSpace(c.Query("status")),
		ParentID: uint(parentID),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "member fetch failed", err)
		return
	}
	response.SuccessWithPage(c, distributors, response.BuildPagination(page, pageSize, total))
}

// GetDistributor returns one member account
func (h *Handler) GetDistributor(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid member id", nil)
		return
	}
	distributor, err := h.DistributorRepo.GetByID(uint(id))
	if err != nil {
		respondError(c, response.CodeInternal, "member fetch failed", err)
		return
	}
	if distributor == nil {
		respondError(c, response.CodeNotFound, "member not found", nil)
		return
	}
	response.Success(c, distributor)
}
