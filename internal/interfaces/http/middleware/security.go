// internal/interfaces/http/middleware/security.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/kupipodariday-backend/internal/config"
)

// SecurityHeaders adds security headers to API responses. Bodies are JSON
// or PDF, so nothing is ever allowed to load or frame them.
func SecurityHeaders(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Header("Server", "KupiPodariDay API")

		if cfg.IsProduction() {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		// tokens and profiles must not end up in shared caches
		if strings.HasPrefix(c.GetHeader("Authorization"), "Bearer ") {
			c.Header("Cache-Control", "no-store")
		}

		c.Next()
	}
}
