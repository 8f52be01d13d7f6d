package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// apiKeyAuth rejects requests without the configured key. An empty apiKey
// disables the check.
func apiKeyAuth(apiKey, header string) gin.HandlerFunc {
	if header == "" {
		header = "X-API-Key"
	}
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		key := strings.TrimSpace(c.GetHeader(header))
		if key == "" {
			if authz := c.GetHeader("Authorization"); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				key = strings.TrimSpace(authz[7:])
			}
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
