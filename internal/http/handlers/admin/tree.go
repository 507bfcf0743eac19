package admin

import (
	"strconv"

	"github.com/carenation/backend/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ReparentRequest move a member to a new parent slot
type ReparentRequest struct {
	NewParentID uint   `json:"new_parent_id" binding:"required"`
	Position    string `json:"position" binding:"required"`
}

// GetTreeRoot returns the root member
func (h *Handler) GetTreeRoot(c *gin.Context) {
	root, err := h.TreeService.Root()
	if err != nil {
		respondTreeError(c, err)
		return
	}
	if root == nil {
		respondError(c, response.CodeNotFound, "tree is empty", nil)
		return
	}
	response.Success(c, root)
}

// GetSubtree returns a depth-limited subtree under any member
func (h *Handler) GetSubtree(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid member id", nil)
		return
	}
	depth, _ := strconv.Atoi(c.DefaultQuery("depth", "3"))
	node, err := h.TreeService.Subtree(uint(id), depth)
	if err != nil {
		respondTreeError(c, err)
		return
	}
	response.Success(c, node)
}

// Reparent moves a member (and its whole downline) under a new parent slot
func (h *Handler) Reparent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid member id", nil)
		return
	}
	var req ReparentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if err := h.TreeService.Reparent(uint(id), req.NewParentID, req.Position); err != nil {
		respondTreeError(c, err)
		return
	}
	response.Success(c, nil)
}
