package storage

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"classifieds/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(public *gin.RouterGroup) {
	public.GET("/files/:bucket/*path", h.Serve)
}

// Serve streams a stored object. Private buckets need a ?token= from
// SignedURL.
func (h *Handler) Serve(c *gin.Context) {
	bucket := Bucket(c.Param("bucket"))
	objectPath := strings.TrimPrefix(c.Param("path"), "/")

	f, err := h.svc.Open(bucket, objectPath, c.Query("token"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		response.FromError(c, err)
		return
	}
	if ct := mime.TypeByExtension(filepath.Ext(objectPath)); ct != "" {
		c.Header("Content-Type", ct)
	}
	if bucket.Public() {
		c.Header("Cache-Control", "public, max-age=86400")
	} else {
		c.Header("Cache-Control", "private, no-store")
	}
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}
