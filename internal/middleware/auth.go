package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"classifieds/internal/domain"
	"classifieds/internal/modules/access"
	"classifieds/internal/pkg/jwt"
	"classifieds/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Identifier turns a bearer token into the caller's current identity.
type Identifier interface {
	Identify(ctx context.Context, token string) (access.Identity, error)
}

// Authenticate requires a valid bearer token. Roles and the advertiser
// profile are loaded on every request.
func Authenticate(ids Identifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			return
		}

		token, ok := bearer(authHeader)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			return
		}

		id, err := ids.Identify(c.Request.Context(), token)
		if err != nil {
			abortIdentify(c, err)
			return
		}

		access.Set(c, id)
		c.Next()
	}
}

// OptionalAuth resolves the caller when a valid token is present and
// otherwise continues as an anonymous visitor.
func OptionalAuth(ids Identifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearer(c.GetHeader("Authorization")); ok {
			if id, err := ids.Identify(c.Request.Context(), token); err == nil {
				access.Set(c, id)
			}
		}
		c.Next()
	}
}

// RequireStaff admits admins and moderators.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !access.FromContext(c).Staff() {
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			return
		}
		c.Next()
	}
}

func bearer(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func abortIdentify(c *gin.Context, err error) {
	switch {
	case errors.Is(err, jwt.ErrExpiredToken):
		response.Abort(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired")
	case errors.Is(err, domain.ErrUnauthenticated):
		response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
	default:
		response.FromError(c, err)
		c.Abort()
	}
}
