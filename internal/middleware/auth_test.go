package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"classifieds/internal/domain"
	"classifieds/internal/modules/access"
	"classifieds/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubIdentifier map[string]access.Identity

func (s stubIdentifier) Identify(_ context.Context, token string) (access.Identity, error) {
	switch token {
	case "expired":
		return access.Identity{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, jwt.ErrExpiredToken)
	case "broken-store":
		return access.Identity{}, domain.StoreError("roles", fmt.Errorf("db down"))
	}
	if id, ok := s[token]; ok {
		return id, nil
	}
	return access.Identity{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, jwt.ErrInvalidToken)
}

var ids = stubIdentifier{
	"advertiser": {UserID: "u1", AdvertiserID: "adv-1", Roles: []domain.Role{domain.RoleAdvertiser}},
	"moderator":  {UserID: "m1", Roles: []domain.Role{domain.RoleModerator}},
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	r.ServeHTTP(w, req)
	return w
}

func whoAmI(c *gin.Context) {
	id := access.FromContext(c)
	c.JSON(http.StatusOK, gin.H{"user_id": id.UserID, "advertiser_id": id.AdvertiserID})
}

func TestAuthenticate_ValidToken(t *testing.T) {
	router := gin.New()
	router.Use(Authenticate(ids))
	router.GET("/protected", whoAmI)

	w := serve(router, "Bearer advertiser")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"u1"`)
	assert.Contains(t, w.Body.String(), `"advertiser_id":"adv-1"`)
}

func TestAuthenticate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"no token", "", http.StatusUnauthorized, "AUTH_HEADER_MISSING"},
		{"wrong format", "Basic dGVzdA==", http.StatusUnauthorized, "INVALID_AUTH_FORMAT"},
		{"invalid token", "Bearer invalid-jwt-here", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"expired token", "Bearer expired", http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"store down", "Bearer broken-store", http.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(Authenticate(ids))
			router.GET("/protected", func(c *gin.Context) {
				t.Fatal("handler should not be reached")
			})

			w := serve(router, tt.header)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.code)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	router := gin.New()
	router.Use(OptionalAuth(ids))
	router.GET("/protected", whoAmI)

	w := serve(router, "Bearer advertiser")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"u1"`)

	w = serve(router, "Bearer invalid")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":""`)

	w = serve(router, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireStaff(t *testing.T) {
	router := gin.New()
	router.Use(Authenticate(ids), RequireStaff())
	router.GET("/protected", whoAmI)

	assert.Equal(t, http.StatusOK, serve(router, "Bearer moderator").Code)

	w := serve(router, "Bearer advertiser")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")
}
