package highlight

import (
	"net/http"

	"classifieds/internal/domain"
	"classifieds/internal/modules/access"
	"classifieds/internal/modules/storage"
	"classifieds/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects an authenticated group mounted at /advertiser.
func (h *Handler) RegisterRoutes(advertiser *gin.RouterGroup) {
	advertiser.POST("/listings/:id/highlights", h.Publish)
	advertiser.DELETE("/highlights/:id", h.Remove)
}

func (h *Handler) Publish(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.FromError(c, domain.Invalid("file", "media file is required"))
		return
	}
	f, err := storage.ReadMultipart(fh, storage.KindHighlight)
	if err != nil {
		response.FromError(c, err)
		return
	}

	hl, err := h.service.Publish(c.Request.Context(), access.FromContext(c), c.Param("id"), f)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, hl)
}

func (h *Handler) Remove(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), access.FromContext(c), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
