package public

import (
	"strconv"

	"github.com/carenation/backend/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListMyNotifications returns the caller's latest notifications
func (h *Handler) ListMyNotifications(c *gin.Context) {
	uid, ok := getDistributorID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	logs, err := h.NotificationService.ListByDistributor(uid, limit)
	if err != nil {
		respondError(c, response.CodeInternal, "notification fetch failed", err)
		return
	}
	response.Success(c, logs)
}
