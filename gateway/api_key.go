package gateway

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const APIKeyHeader = "X-API-Key"

// APIKeyConfig controls access to write endpoints.
type APIKeyConfig struct {
	Key   string
	Debug bool
}

// RequireAPIKey guards write endpoints using the X-API-Key header.
// If Debug is true, the guard is bypassed.
func RequireAPIKey(cfg APIKeyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Debug {
			c.Next()
			return
		}

		if cfg.Key == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"code":    "api_key_not_configured",
				"message": "api key auth not configured",
			})
			return
		}

		key := strings.TrimSpace(c.GetHeader(APIKeyHeader))
		if key != "" && subtle.ConstantTimeCompare([]byte(key), []byte(cfg.Key)) == 1 {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"code":    "unauthorized",
			"message": "Invalid or missing API Key",
		})
	}
}
