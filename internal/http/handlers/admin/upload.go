package admin

import (
	"github.com/carenation/backend/internal/http/response"

	"github.com/gin-gonic/gin"
)

// Upload stores a multipart file under the given scene directory and
// returns its public URL. Used for payout proofs and product images.
func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "file is required", nil)
		return
	}
	scene := c.DefaultPostForm("scene", "misc")
	url, err := h.UploadService.SaveFile(file, scene)
	if err != nil {
		respondUploadError(c, err)
		return
	}
	response.Success(c, gin.H{"url": url})
}
