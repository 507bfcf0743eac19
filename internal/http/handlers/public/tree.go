package public

import (
	"errors"
	"strconv"

	"github.com/carenation/backend/internal/http/response"
	"github.com/carenation/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// GetMyTree returns the caller's placement subtree, depth-limited
func (h *Handler) GetMyTree(c *gin.Context) {
	uid, ok := getDistributorID(c)
	if !ok {
		return
	}
	depth, _ := strconv.Atoi(c.DefaultQuery("depth", "3"))
	node, err := h.TreeService.Subtree(uid, depth)
	if err != nil {
		if errors.Is(err, service.ErrTreeNodeNotFound) {
			respondError(c, response.CodeNotFound, "account not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "tree fetch failed", err)
		return
	}
	response.Success(c, node)
}
