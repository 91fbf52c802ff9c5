package report

import (
	"net/http"

	"classifieds/internal/domain"
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

// RegisterPublicRoutes mounts report intake. limit throttles anonymous
// clients and may be nil.
func (h *Handler) RegisterPublicRoutes(public *gin.RouterGroup, limit gin.HandlerFunc) {
	handlers := []gin.HandlerFunc{h.Create}
	if limit != nil {
		handlers = append([]gin.HandlerFunc{limit}, handlers...)
	}
	public.POST("/reports", handlers...)
}

func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/reports", h.List)
	admin.GET("/reports/pending", h.Pending)
	admin.POST("/reports/:id/resolve", h.Resolve)
}

func (h *Handler) Create(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	rep, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"id": rep.ID, "status": rep.Status})
}

func (h *Handler) Resolve(c *gin.Context) {
	var in ResolveInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	rep, err := h.service.Resolve(c.Request.Context(), access.FromContext(c), c.Param("id"), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rep)
}

func (h *Handler) Pending(c *gin.Context) {
	reports, err := h.service.ListPending(c.Request.Context(), access.FromContext(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reports": nonNil(reports)})
}

func (h *Handler) List(c *gin.Context) {
	reports, err := h.service.List(c.Request.Context(), access.FromContext(c),
		domain.ReportStatus(c.Query("status")), domain.ReportReason(c.Query("reason")))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reports": nonNil(reports)})
}

func nonNil(r []domain.Report) []domain.Report {
	if r == nil {
		return []domain.Report{}
	}
	return r
}
