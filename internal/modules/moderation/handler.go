package moderation

import (
	"net/http"
	"strconv"

	"classifieds/internal/modules/access"
	"classifieds/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects a staff-only group mounted at /admin.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/verifications/pending", h.PendingVerifications)
	admin.POST("/verifications/:id/approve", h.ApproveVerification)
	admin.POST("/verifications/:id/reject", h.RejectVerification)
	admin.GET("/stats", h.Stats)
	admin.GET("/logs", h.Logs)
	admin.POST("/tags", h.CreateTag)
	admin.DELETE("/tags/:id", h.DeactivateTag)
}

func (h *Handler) PendingVerifications(c *gin.Context) {
	items, err := h.service.PendingVerifications(c.Request.Context(), access.FromContext(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"verifications": items})
}

func (h *Handler) ApproveVerification(c *gin.Context) {
	var req ReviewRequest
	_ = c.ShouldBindJSON(&req)
	if err := h.service.ApproveVerification(c.Request.Context(), access.FromContext(c), c.Param("id"), req.Notes); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "approved"})
}

func (h *Handler) RejectVerification(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "notes are required")
		return
	}
	if err := h.service.RejectVerification(c.Request.Context(), access.FromContext(c), c.Param("id"), req.Notes); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "rejected"})
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), access.FromContext(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

func (h *Handler) Logs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	logs, err := h.service.Logs(c.Request.Context(), access.FromContext(c), limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"logs": logs})
}

func (h *Handler) CreateTag(c *gin.Context) {
	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	tag, err := h.service.CreateTag(c.Request.Context(), access.FromContext(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, tag)
}

func (h *Handler) DeactivateTag(c *gin.Context) {
	if err := h.service.DeactivateTag(c.Request.Context(), access.FromContext(c), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deactivated": true})
}
