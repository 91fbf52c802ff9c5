package catalog

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"classifieds/internal/domain"
	"classifieds/internal/pkg/response"
	"classifieds/internal/repository"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(public *gin.RouterGroup) {
	public.GET("/listings", h.List)
	public.GET("/listings/:id", h.Get)
	public.POST("/listings/:id/view", h.View)
	public.POST("/listings/:id/contact", h.Contact)
	public.GET("/tags", h.Tags)
	public.GET("/plans", h.Plans)
}

// List handles GET /api/v1/listings.
//
// Query: state, city, min_price, max_price, min_age, max_age, q,
// tags (comma separated ids), sort, page (0-based).
func (h *Handler) List(c *gin.Context) {
	f, err := parseFilters(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	page := 0
	if raw := c.Query("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 0 || page > MaxPage {
			response.FromError(c, domain.Invalid("page", fmt.Sprintf("must be an integer between 0 and %d", MaxPage)))
			return
		}
	}

	result := h.service.Query(c.Request.Context(), f, repository.ListingSort(c.Query("sort")), page)
	response.Success(c, http.StatusOK, result)
}

func parseFilters(c *gin.Context) (Filters, error) {
	f := Filters{
		State:      c.Query("state"),
		City:       c.Query("city"),
		SearchText: c.Query("q"),
	}
	if tags := c.Query("tags"); tags != "" {
		f.TagIDs = strings.Split(tags, ",")
	}

	var err error
	if f.MinPrice, err = floatParam(c, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = floatParam(c, "max_price"); err != nil {
		return f, err
	}
	if f.MinAge, err = intParam(c, "min_age"); err != nil {
		return f, err
	}
	if f.MaxAge, err = intParam(c, "max_age"); err != nil {
		return f, err
	}
	return f, nil
}

func floatParam(c *gin.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, domain.Invalid(name, "must be a number")
	}
	return &v, nil
}

func intParam(c *gin.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, domain.Invalid(name, "must be an integer")
	}
	return &v, nil
}

func (h *Handler) Get(c *gin.Context) {
	detail, err := h.service.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, detail)
}

func (h *Handler) View(c *gin.Context) {
	if err := h.service.RecordView(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Contact(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "channel must be whatsapp, telegram or instagram")
		return
	}

	link, err := h.service.RecordContact(c.Request.Context(), c.Param("id"), req.Channel)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"url": link})
}

func (h *Handler) Tags(c *gin.Context) {
	tags, err := h.service.ListTags(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, tags)
}

func (h *Handler) Plans(c *gin.Context) {
	plans, err := h.service.ListPlans(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, plans)
}
