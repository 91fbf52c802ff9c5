package listing

import (
	"net/http"
	"strconv"
	"strings"

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

// RegisterAdvertiserRoutes expects an authenticated group.
func (h *Handler) RegisterAdvertiserRoutes(advertiser *gin.RouterGroup) {
	advertiser.GET("/listings", h.ListMine)
	advertiser.GET("/stats", h.Stats)
	advertiser.POST("/listings", h.Create)
	advertiser.PATCH("/listings/:id", h.Edit)
	advertiser.DELETE("/listings/:id", h.Delete)
	advertiser.POST("/listings/:id/photos", h.AddPhotos)
}

// RegisterAdminRoutes expects a staff-only group.
func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/listings/pending", h.Pending)
	admin.POST("/listings/:id/approve", h.Approve)
	admin.POST("/listings/:id/reject", h.Reject)
	admin.POST("/listings/:id/suspend", h.Suspend)
	admin.DELETE("/listings/:id", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBind(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	photos, err := formPhotos(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	l, err := h.service.Create(c.Request.Context(), access.FromContext(c), in, photos)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, l)
}

func (h *Handler) Edit(c *gin.Context) {
	var in EditInput
	if err := c.ShouldBind(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	photos, err := formPhotos(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	l, err := h.service.Edit(c.Request.Context(), access.FromContext(c), c.Param("id"), in, photos)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, l)
}

func (h *Handler) AddPhotos(c *gin.Context) {
	photos, err := formPhotos(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	l, err := h.service.AddPhotos(c.Request.Context(), access.FromContext(c), c.Param("id"), photos)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, l)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), access.FromContext(c), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) ListMine(c *gin.Context) {
	items, err := h.service.ListMine(c.Request.Context(), access.FromContext(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"listings": items})
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), access.FromContext(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

func (h *Handler) Pending(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.service.ListPending(c.Request.Context(), access.FromContext(c), page, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

func (h *Handler) Approve(c *gin.Context) {
	if err := h.service.Approve(c.Request.Context(), access.FromContext(c), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "approved"})
}

func (h *Handler) Reject(c *gin.Context) {
	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "reason is required")
		return
	}
	if err := h.service.Reject(c.Request.Context(), access.FromContext(c), c.Param("id"), req.Reason); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "rejected"})
}

func (h *Handler) Suspend(c *gin.Context) {
	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "reason is required")
		return
	}
	if err := h.service.Suspend(c.Request.Context(), access.FromContext(c), c.Param("id"), req.Reason); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "suspended"})
}

// formPhotos reads the "photos" files of a multipart request. Other
// content types carry no photos.
func formPhotos(c *gin.Context) ([]storage.File, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, domain.Invalid("photos", "malformed multipart body")
	}
	headers := form.File["photos"]
	files := make([]storage.File, 0, len(headers))
	for _, fh := range headers {
		f, err := storage.ReadMultipart(fh, storage.KindPhoto)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}
