package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/skillbridge/tutoring-backend/internal/utils"
)

// Limiter decides whether a key may make another request
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// RateLimit rejects a client IP with 429 once it exceeds the limiter's quota
// for the route. A nil limiter disables the check.
func RateLimit(limiter Limiter, retryAfter time.Duration, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		ip := utils.GetRealIP(c)
		if limiter.Allow(c.Request.Context(), c.FullPath()+":"+ip) {
			c.Next()
			return
		}

		logger.WithFields(logrus.Fields{
			"ip":   ip,
			"path": c.FullPath(),
		}).Warn("Rate limit exceeded")

		if retryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"success": false,
			"message": "Too many requests, please try again later",
			"code":    "RATE_LIMITED",
		})
	}
}
