package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/skillbridge/tutoring-backend/internal/config"
)

// CORS allows credentialed requests from the configured origins
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc:  func(origin string) bool { return OriginAllowed(cfg, origin) },
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     cfg.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// OriginAllowed reports whether origin is listed, or matches one of the
// preview deployment prefix and suffix pairs.
func OriginAllowed(cfg config.CORSConfig, origin string) bool {
	origin = strings.TrimRight(origin, "/")
	if origin == "" {
		return true
	}
	for _, allowed := range cfg.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	for _, prefix := range cfg.PreviewPrefixes {
		if !strings.HasPrefix(origin, prefix) {
			continue
		}
		for _, suffix := range cfg.PreviewSuffixes {
			if strings.HasSuffix(origin, suffix) {
				return true
			}
		}
	}
	return false
}
