// Package auth guards the API with a shared key.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"docmatch/internal/config"

	"github.com/gin-gonic/gin"
)

// APIKeyMiddleware requires the configured key in X-API-Key or
// "Authorization: ApiKey <key>". An empty configured key leaves the API open.
func APIKeyMiddleware(cfg config.ExternalConfig) gin.HandlerFunc {
	expected := []byte(cfg.APIKey)

	return func(c *gin.Context) {
		if len(expected) == 0 {
			c.Next()
			return
		}

		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			if key, ok := strings.CutPrefix(c.GetHeader("Authorization"), "ApiKey "); ok {
				apiKey = key
			}
		}

		if apiKey == "" {
			abort(c, "MISSING_API_KEY", "API key is required. Provide X-API-Key header or Authorization: ApiKey <key>")
			return
		}

		if subtle.ConstantTimeCompare([]byte(apiKey), expected) != 1 {
			abort(c, "INVALID_API_KEY", "Invalid API key provided")
			return
		}

		c.Next()
	}
}

func abort(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
