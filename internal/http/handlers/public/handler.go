package public

import "github.com/carenation/backend/internal/provider"

// Handler member-facing API handlers
type Handler struct {
	*provider.Container
}

// New creates the public handler
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
