package response

import (
	"errors"
	"net/http"

	"classifieds/internal/domain"

	"github.com/gin-gonic/gin"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// Abort writes an error envelope and stops the handler chain.
func Abort(c *gin.Context, statusCode int, code string, message string) {
	Error(c, statusCode, code, message)
	c.Abort()
}

// FromError maps the domain error taxonomy onto an HTTP status and envelope.
// Store failures are attached to the gin context for the error logger and
// answered with a generic message.
func FromError(c *gin.Context, err error) {
	var (
		validationErr *domain.ValidationError
		uploadErr     *domain.UploadError
		limitErr      *domain.LimitError
	)

	switch {
	case errors.As(err, &validationErr):
		ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", validationErr.Error(), gin.H{"field": validationErr.Field})
	case errors.Is(err, domain.ErrValidation):
		Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		Error(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
	case errors.Is(err, domain.ErrPermission):
		Error(c, http.StatusForbidden, "FORBIDDEN", "You are not allowed to perform this action")
	case errors.Is(err, domain.ErrNotFound):
		Error(c, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, domain.ErrInvalidTransition):
		Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, domain.ErrConflict):
		Error(c, http.StatusConflict, "CONFLICT", err.Error())
	case errors.As(err, &limitErr):
		ErrorWithDetails(c, http.StatusForbidden, "PLAN_LIMIT_REACHED", limitErr.Error(), gin.H{
			"resource": limitErr.Resource,
			"current":  limitErr.Current,
			"limit":    limitErr.Limit,
			"plan":     limitErr.PlanName,
		})
	case errors.As(err, &uploadErr):
		status := http.StatusBadRequest
		if uploadErr.TooLarge {
			status = http.StatusRequestEntityTooLarge
		} else if uploadErr.BadType {
			status = http.StatusUnsupportedMediaType
		} else if uploadErr.Err != nil {
			status = http.StatusBadGateway
			_ = c.Error(err)
		}
		Error(c, status, "UPLOAD_ERROR", uploadErr.Reason)
	case errors.Is(err, domain.ErrStore):
		_ = c.Error(err)
		Error(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Service temporarily unavailable")
	default:
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
	}
}
