package admin

import (
	"github.com/carenation/backend/internal/provider"
)

// Handler back-office HTTP handlers
type Handler struct {
	*provider.Container
}

// New creates the admin handler set
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
