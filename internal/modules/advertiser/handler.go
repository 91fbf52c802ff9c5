package advertiser

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
	advertiser.POST("/profile", h.CreateProfile)
	advertiser.GET("/profile", h.GetProfile)
	advertiser.PATCH("/profile", h.UpdateProfile)
	advertiser.POST("/verification", h.SubmitVerification)
}

func (h *Handler) CreateProfile(c *gin.Context) {
	var in CreateProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	profile, err := h.service.CreateProfile(c.Request.Context(), access.FromContext(c), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, profile)
}

func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.service.GetProfile(c.Request.Context(), access.FromContext(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var in UpdateProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	profile, err := h.service.UpdateProfile(c.Request.Context(), access.FromContext(c), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// SubmitVerification takes a multipart form with "document", an optional
// "selfie" and optional "notes".
func (h *Handler) SubmitVerification(c *gin.Context) {
	docHeader, err := c.FormFile("document")
	if err != nil {
		response.FromError(c, domain.Invalid("document", "document file is required"))
		return
	}
	document, err := storage.ReadMultipart(docHeader, storage.KindDocument)
	if err != nil {
		response.FromError(c, err)
		return
	}

	var selfie *storage.File
	if selfieHeader, err := c.FormFile("selfie"); err == nil {
		f, err := storage.ReadMultipart(selfieHeader, storage.KindDocument)
		if err != nil {
			response.FromError(c, err)
			return
		}
		selfie = &f
	}

	var notes *string
	if v, ok := c.GetPostForm("notes"); ok {
		notes = &v
	}

	doc, err := h.service.SubmitVerification(c.Request.Context(), access.FromContext(c), document, selfie, notes)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"id": doc.ID, "status": domain.VerificationPending})
}
