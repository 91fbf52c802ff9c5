package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"classifieds/internal/modules/access"
	"classifieds/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const requestIDKey = "request_id"

// RequestID propagates X-Request-ID or assigns a fresh one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// ErrorLogger logs request errors and recovers from panics.
func ErrorLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				requestFields(c, start, log).WithFields(logrus.Fields{
					"type":  "panic",
					"error": fmt.Sprintf("%v", recovered),
					"stack": string(debug.Stack()),
				}).Error("request panicked")
				response.Abort(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
				return
			}

			if len(c.Errors) == 0 {
				if c.Writer.Status() >= http.StatusInternalServerError {
					requestFields(c, start, log).WithField("type", "http_error").Error("request failed")
				}
				return
			}

			for _, err := range c.Errors {
				entry := requestFields(c, start, log).WithFields(logrus.Fields{
					"type":  fmt.Sprintf("%v", err.Type),
					"error": err.Error(),
				})
				if err.Meta != nil {
					entry = entry.WithField("meta", err.Meta)
				}
				entry.Error("request error")
			}
		}()

		c.Next()
	}
}

// AccessLog writes one line per request.
func AccessLog(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		requestFields(c, start, log).Info("request")
	}
}

func requestFields(c *gin.Context, start time.Time, log logrus.FieldLogger) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		"status":     c.Writer.Status(),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"query":      c.Request.URL.RawQuery,
		"client_ip":  c.ClientIP(),
		"user_id":    access.FromContext(c).UserID,
		"request_id": c.GetString(requestIDKey),
		"latency":    time.Since(start).String(),
	})
}
