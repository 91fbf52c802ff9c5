package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"classifieds/internal/config"
	"classifieds/internal/database/dbtest"
	"classifieds/internal/domain"
	"classifieds/internal/pkg/logger"
	"classifieds/internal/pkg/metrics"
	"classifieds/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type api struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := dbtest.New(t)
	reg := prometheus.NewRegistry()

	cfg := &config.Config{
		AppEnv:            "test",
		JWTSecret:         "test-secret",
		JWTTTL:            time.Hour,
		StorageDir:        t.TempDir(),
		PublicBaseURL:     "http://api.test",
		SignedURLTTL:      time.Minute,
		HighlightLifetime: 24 * time.Hour,
		ReportRateRPS:     100,
		ReportRateBurst:   100,
		CORSAllowOrigins:  []string{"*"},
	}

	router := gin.New()
	SetupRoutes(router, Deps{
		Config:   cfg,
		DB:       db,
		Log:      logger.Discard(),
		Metrics:  metrics.New(reg),
		Gatherer: reg,
	})
	return &api{t: t, router: router, db: db}
}

func (a *api) do(method, path, token string, body any) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (a *api) upload(path, token string, fields map[string]string, files map[string][]byte) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(a.t, mw.WriteField(k, v))
	}
	for name, data := range files {
		fw, err := mw.CreateFormFile(name, name+".bin")
		require.NoError(a.t, err)
		_, err = fw.Write(data)
		require.NoError(a.t, err)
	}
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

// fetch requests a storage URL issued by the API and returns the status.
func (a *api) fetch(rawURL string) int {
	a.t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(a.t, err)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, u.RequestURI(), nil))
	return w.Code
}

func (a *api) signUp(email, name string) string {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email": email, "password": "long-password", "display_name": name,
	})
	require.Equal(a.t, http.StatusCreated, code)
	var s struct{ Token string }
	require.NoError(a.t, json.Unmarshal(env.Data, &s))
	return s.Token
}

func (a *api) staff(email string, role domain.Role) string {
	a.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("staff-password"), bcrypt.MinCost)
	require.NoError(a.t, err)
	require.NoError(a.t, repository.NewUserRepository(a.db).Create(context.Background(), &domain.User{Email: email, PasswordHash: string(hash)}, role))

	code, env := a.do(http.MethodPost, "/api/v1/auth/signin", "", map[string]string{"email": email, "password": "staff-password"})
	require.Equal(a.t, http.StatusOK, code)
	var s struct{ Token string }
	require.NoError(a.t, json.Unmarshal(env.Data, &s))
	return s.Token
}

func TestListingLifecycleOverHTTP(t *testing.T) {
	a := newAPI(t)

	advertiser := a.signUp("ana@example.com", "Ana")
	moderator := a.staff("mod@example.com", domain.RoleModerator)

	code, env := a.do(http.MethodPost, "/api/v1/advertiser/listings", advertiser, map[string]any{
		"title": "Massagem relaxante", "description": "Atendimento no centro", "state": "SP", "city": "São Paulo", "price": 150,
	})
	require.Equal(t, http.StatusCreated, code)
	var created struct {
		ID     string
		Status domain.ListingStatus
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, domain.ListingPending, created.Status)

	code, _ = a.do(http.MethodGet, "/api/v1/listings/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	rival := a.signUp("rival@example.com", "Rival")
	code, env = a.do(http.MethodPatch, "/api/v1/advertiser/listings/"+created.ID, rival, map[string]string{"title": "mine now"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	code, _ = a.do(http.MethodPatch, "/api/v1/advertiser/listings/no-such-id", rival, map[string]string{"title": "mine now"})
	assert.Equal(t, http.StatusNotFound, code)

	code, env = a.do(http.MethodPost, "/api/v1/admin/listings/"+created.ID+"/approve", advertiser, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	code, _ = a.do(http.MethodPost, "/api/v1/admin/listings/"+created.ID+"/approve", moderator, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = a.do(http.MethodGet, "/api/v1/listings?state=SP", "", nil)
	require.Equal(t, http.StatusOK, code)
	var page struct {
		Listings []struct{ ID, Title string }
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Listings, 1)
	assert.Equal(t, created.ID, page.Listings[0].ID)

	code, _ = a.do(http.MethodPost, "/api/v1/reports", "", map[string]string{"listing_id": created.ID, "reason": "scam"})
	require.Equal(t, http.StatusCreated, code)

	code, env = a.do(http.MethodGet, "/api/v1/admin/stats", moderator, nil)
	require.Equal(t, http.StatusOK, code)
	var stats struct {
		PendingReports   int64 `json:"pending_reports"`
		ApprovedListings int64 `json:"approved_listings"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(1), stats.PendingReports)
	assert.Equal(t, int64(1), stats.ApprovedListings)

	code, env = a.do(http.MethodPost, "/api/v1/admin/listings/"+created.ID+"/reject", moderator, map[string]string{"reason": " "})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestAuthBoundaries(t *testing.T) {
	a := newAPI(t)

	code, env := a.do(http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "AUTH_HEADER_MISSING", env.Error.Code)

	code, env = a.do(http.MethodPost, "/api/v1/auth/signin", "", map[string]string{"email": "nobody@example.com", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	admin := a.staff("admin@example.com", domain.RoleAdmin)
	code, env = a.do(http.MethodGet, "/api/v1/auth/me", admin, nil)
	require.Equal(t, http.StatusOK, code)
	var me struct{ Roles []domain.Role }
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, []domain.Role{domain.RoleAdmin}, me.Roles)

	code, _ = a.do(http.MethodPost, "/api/v1/advertiser/listings", admin, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestHealthAndMetrics(t *testing.T) {
	a := newAPI(t)

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)

	a.do(http.MethodGet, "/api/v1/tags", "", nil)

	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `classifieds_http_requests_total{method="GET",route="/api/v1/tags",status="200"} 1`)
}

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	pdfHeader = []byte("%PDF-1.4\n%test")
)

func TestPhotosAndVerificationFilesOverHTTP(t *testing.T) {
	a := newAPI(t)
	advertiser := a.signUp("bia@example.com", "Bia")
	moderator := a.staff("mod@example.com", domain.RoleModerator)

	code, env := a.upload("/api/v1/advertiser/listings", advertiser, map[string]string{
		"title": "Jantar", "description": "Companhia para eventos", "state": "RJ", "city": "Niterói",
	}, map[string][]byte{"photos": pngHeader})
	require.Equal(t, http.StatusCreated, code, string(env.Data))
	var created struct {
		ID     string
		Photos []struct {
			PhotoURL string `json:"photo_url"`
			IsMain   bool   `json:"is_main"`
		}
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Len(t, created.Photos, 1)
	assert.True(t, created.Photos[0].IsMain)
	assert.Equal(t, http.StatusOK, a.fetch(created.Photos[0].PhotoURL))

	code, _ = a.upload("/api/v1/advertiser/verification", advertiser, nil, map[string][]byte{"document": pdfHeader})
	require.Equal(t, http.StatusCreated, code)

	code, env = a.do(http.MethodGet, "/api/v1/admin/verifications/pending", moderator, nil)
	require.Equal(t, http.StatusOK, code)
	var pending struct {
		Verifications []struct {
			ID    string
			Links struct {
				DocumentURL string `json:"document_url"`
			}
		}
	}
	require.NoError(t, json.Unmarshal(env.Data, &pending))
	require.Len(t, pending.Verifications, 1)

	signed := pending.Verifications[0].Links.DocumentURL
	assert.Equal(t, http.StatusOK, a.fetch(signed))
	unsigned, err := url.Parse(signed)
	require.NoError(t, err)
	unsigned.RawQuery = ""
	assert.Equal(t, http.StatusForbidden, a.fetch(unsigned.String()))

	code, _ = a.do(http.MethodPost, "/api/v1/admin/verifications/"+pending.Verifications[0].ID+"/approve", moderator, map[string]string{})
	require.Equal(t, http.StatusOK, code)

	code, env = a.do(http.MethodGet, "/api/v1/advertiser/profile", advertiser, nil)
	require.Equal(t, http.StatusOK, code)
	var profile struct {
		IsVerified bool `json:"is_verified"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.True(t, profile.IsVerified)
}

func TestCatalogPageBounds(t *testing.T) {
	a := newAPI(t)

	for _, raw := range []string{"-1", "x", "178956971", "9223372036854775807"} {
		code, env := a.do(http.MethodGet, "/api/v1/listings?page="+raw, "", nil)
		assert.Equal(t, http.StatusBadRequest, code, raw)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code, raw)
	}

	code, _ := a.do(http.MethodGet, "/api/v1/listings?page=178956970", "", nil)
	assert.Equal(t, http.StatusOK, code)
}
