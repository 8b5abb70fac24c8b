// Package http provides the security gate middleware for incoming requests.
package http

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/trustguard/internal/errors"
	"github.com/allisson/trustguard/internal/httputil"
	securityDomain "github.com/allisson/trustguard/internal/security/domain"
	securityService "github.com/allisson/trustguard/internal/security/service"
)

// ClientIP extracts the originating client IP from proxy headers.
// X-Forwarded-For wins (first hop, the original client), then X-Real-IP.
// Returns "unknown" when neither header is present.
func ClientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(c.GetHeader("X-Real-IP")); realIP != "" {
		return realIP
	}
	return "unknown"
}

// ValidateRequest gates every request through the security state: blacklisted
// IPs get 403, exhausted rate budgets get 429 with a Retry-After header.
// Each endpoint group mounts the middleware with its own rate limit class.
func ValidateRequest(
	state *securityService.SecurityState,
	class securityDomain.RateLimitClass,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := ClientIP(c)

		if state.IsBlacklisted(ip) {
			logger.Warn("blocked request from blacklisted ip",
				slog.String("ip", ip),
				slog.String("path", c.Request.URL.Path),
			)
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		decision := state.CheckRateLimit(c.Request.Context(), ip, class)
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", decision.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", decision.Remaining))

		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))

			logger.Debug("rate limit exceeded",
				slog.String("ip", ip),
				slog.String("class", string(class)),
				slog.Int("retry_after", retryAfter),
			)
			httputil.HandleErrorGin(c, apperrors.ErrRateLimited, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
