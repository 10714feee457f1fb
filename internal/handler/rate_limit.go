package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"vidstream/internal/dto"
	"vidstream/internal/service"
)

// RateLimitMiddleware creates a rate limiting middleware keyed by
// keyFunc. Fails open when the limiter backend is unavailable.
func RateLimitMiddleware(rateLimiter *service.RateLimiter, limit int, window time.Duration, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		allowed, err := rateLimiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}

		remaining, _ := rateLimiter.Remaining(c.Request.Context(), key, limit, window)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error:   "Too Many Requests",
				Message: "Rate limit exceeded",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// IPBasedKey extracts a rate limit key from the client IP
func IPBasedKey(c *gin.Context) string {
	// X-Forwarded-For can contain multiple IPs, take the first one
	if ip := c.GetHeader("X-Forwarded-For"); ip != "" {
		ips := strings.Split(ip, ",")
		return strings.TrimSpace(ips[0])
	}

	return c.ClientIP()
}

// CredentialKey scopes the limit to the credential endpoint plus the
// client IP, so login attempts and uploads count separately.
func CredentialKey(c *gin.Context) string {
	return c.Request.URL.Path + ":" + IPBasedKey(c)
}
