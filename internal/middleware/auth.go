// internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/blob-shop/internal/i18n"
	"github.com/javajoker/blob-shop/internal/utils"
)

// AdminRequired admits requests carrying a valid admin bearer token.
func AdminRequired(signer *utils.JWTSigner) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, i18n.T(lang, i18n.KeyAuthRequired))
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			return
		}

		claims, err := signer.Validate(strings.TrimSpace(parts[1]))
		if err != nil || claims.Role != utils.RoleAdmin {
			abortUnauthorized(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			return
		}

		c.Set("role", claims.Role)
		c.Set("subject", claims.Subject)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorBody{
		Error: message,
		Code:  "UNAUTHORIZED",
	})
}
