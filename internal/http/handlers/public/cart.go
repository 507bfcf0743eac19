package public

import (
	"github.com/carenation/backend/internal/http/response"

	"github.com/gin-gonic/gin"
)

// SetCartItemRequest upsert one cart line
type SetCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// RemoveCartItemRequest drop one cart line
type RemoveCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// GetCart returns the caller's cart with its live total
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getDistributorID(c)
	if !ok {
		return
	}
	summary, err := h.CartService.List(uid)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, summary)
}

// SetCartItem sets the quantity for one product, replacing any existing line
func (h *Handler) SetCartItem(c *gin.Context) {
	uid, ok := getDistributorID(c)
	if !ok {
		return
	}
	var req SetCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if err := h.CartService.Set(uid, req.ProductID, req.Quantity); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, nil)
}

// RemoveCartItem removes one product from the cart
func (h *Handler) RemoveCartItem(c *gin.Context) {
	uid, ok := getDistributorID(c)
	if !ok {
		return
	}
	var req RemoveCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if err := h.CartService.Remove(uid, req.ProductID); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, nil)
}

// ClearCart empties the caller's cart
func (h *Handler) ClearCart(c *gin.Context) {
	uid, ok := getDistributorID(c)
	if !ok {
		return
	}
	if err := h.CartService.Clear(uid); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, nil)
}
