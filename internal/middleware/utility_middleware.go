package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"barterhub/internal/utils"
	"barterhub/pkg/logger"
)

// CORSMiddleware configures CORS headers
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Header("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length, X-Request-ID, X-RateLimit-Remaining")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestIDMiddleware adds a request ID to each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(utils.ContextRequestID, requestID)
		c.Header("X-Request-ID", requestID)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// LoggingMiddleware writes one structured entry per request.
func LoggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Set(utils.ContextLogger, log)

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = c.Request.URL.Path
		}

		entry := log.WithRequestID(c.GetString(utils.ContextRequestID))
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		if id, ok := GetUserID(c); ok {
			entry.LogAPIRequest(c.Request.Method, endpoint, c.Writer.Status(), time.Since(start), &id)
			return
		}
		entry.LogAPIRequest(c.Request.Method, endpoint, c.Writer.Status(), time.Since(start), nil)
	}
}

// RecoveryMiddleware turns a handler panic into a 500 response.
func RecoveryMiddleware(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.WithRequestID(c.GetString(utils.ContextRequestID)).
			WithField("panic", fmt.Sprintf("%v", recovered)).
			WithField("path", c.Request.URL.Path).
			Error("Recovered from panic")
		utils.ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", utils.ErrInternalServer)
	})
}

// WindowCounter counts hits per key within a fixed window.
type WindowCounter interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimitMiddleware allows limit requests per minute per user, or per client
// IP before authentication. The limiter fails open when the counter store is
// unavailable.
func RateLimitMiddleware(counter WindowCounter, limit int, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}

		identity := "ip:" + c.ClientIP()
		if userID, ok := GetUserID(c); ok {
			identity = "user:" + userID.Hex()
		}
		key := "rate_limit:" + identity

		count, err := counter.IncrementWindow(c.Request.Context(), key, time.Minute)
		if err != nil {
			log.WithError(err).WithField("key", key).Warn("Rate limiter unavailable")
			c.Next()
			return
		}

		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(limit) {
			log.LogSecurityEvent("rate_limit_exceeded", "low", map[string]interface{}{
				"identity": identity,
				"count":    count,
			})
			c.Header("Retry-After", "60")
			utils.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED", utils.ErrTooManyRequests)
			return
		}

		c.Next()
	}
}
