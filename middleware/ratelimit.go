package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/content-service/internal/logger"
	"github.com/duynhne/content-service/internal/ratelimit"
)

// RateLimit denies bots, attack signatures and callers over their role's
// budget with 403. A nil limiter or shield skips that check.
func RateLimit(limiter *ratelimit.Limiter, shield *ratelimit.Shield) gin.HandlerFunc {
	return func(c *gin.Context) {
		if shield != nil {
			if reason := shield.Inspect(c.Request); reason != ratelimit.ReasonNone {
				deny(c, reason)
				return
			}
		}
		if limiter == nil {
			c.Next()
			return
		}

		role, subject := ratelimit.Guest, "ip:"+c.ClientIP()
		if claims, ok := ClaimsFrom(c); ok {
			role, subject = claims.Role, "user:"+strconv.FormatInt(claims.ID, 10)
		}

		decision, err := limiter.Allow(c.Request.Context(), role, subject)
		if err != nil {
			logger.FromContext(c.Request.Context()).Error().Err(err).Msg("Rate limit store unavailable, allowing request")
		}
		if !decision.Allowed {
			deny(c, decision.Reason)
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Next()
	}
}

var denialMessages = map[ratelimit.Reason]string{
	ratelimit.ReasonBot:       "Access denied: Bot detected",
	ratelimit.ReasonShield:    "Request blocked by security policy",
	ratelimit.ReasonRateLimit: "Too many requests",
}

func deny(c *gin.Context, reason ratelimit.Reason) {
	logger.FromContext(c.Request.Context()).Warn().
		Str("reason", string(reason)).
		Str("ip", c.ClientIP()).
		Str("path", c.Request.URL.Path).
		Str("user_agent", c.Request.UserAgent()).
		Str("method", c.Request.Method).
		Msg("Request denied by security gate")
	SecurityDenials.WithLabelValues(string(reason)).Inc()

	message, ok := denialMessages[reason]
	if !ok {
		message = "Access denied"
	}
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"error":   "Forbidden",
		"message": message,
	})
}
