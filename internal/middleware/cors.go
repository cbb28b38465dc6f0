// internal/middleware/cors.go
package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// CORS admits the storefront origin. Stripe calls the webhook server to
// server, so it needs no CORS allowance.
func CORS(frontendURL string, production bool) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept-Language", "X-Request-ID"}
	config.ExposeHeaders = []string{"X-Request-ID", "X-Total-Count", "X-Page", "X-Per-Page", "X-Total-Pages"}
	config.MaxAge = 12 * time.Hour

	if production {
		config.AllowOrigins = []string{frontendURL}
	} else {
		config.AllowOrigins = lo.Uniq([]string{frontendURL, "http://localhost:3000", "http://localhost:5173"})
	}

	return cors.New(config)
}
