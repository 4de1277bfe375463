package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sohepalslamat/shopify-front/internal/modules/merchants"
)

const (
	HeaderAdminKey    = "X-Admin-Key"
	HeaderMerchantKey = "X-Api-Key"
)

// RequireAdminKey guards the merchant-registry API with a single
// deployment-wide key from the environment.
func RequireAdminKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error":      "admin API disabled: no key configured",
				"request_id": GetRequestID(c),
			})
			return
		}

		if !adminKeyMatches(c, key) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":      "authentication required",
				"request_id": GetRequestID(c),
			})
			return
		}

		c.Next()
	}
}

// MerchantAuthenticator verifies a merchant-scoped API key for a
// deployment code.
type MerchantAuthenticator interface {
	Authenticate(ctx context.Context, code, apiKey string) (merchants.Merchant, error)
}

// RequireMerchantKey guards routes scoped to one deployment (:code).
// The deployment-wide admin key is always accepted; otherwise the
// merchant's own API key (issued once at registration) must match.
func RequireMerchantKey(auth MerchantAuthenticator, adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKeyMatches(c, adminKey) {
			c.Next()
			return
		}

		apiKey := c.GetHeader(HeaderMerchantKey)
		if apiKey != "" {
			if _, err := auth.Authenticate(c.Request.Context(), c.Param("code"), apiKey); err == nil {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":      "authentication required",
			"request_id": GetRequestID(c),
		})
	}
}

func adminKeyMatches(c *gin.Context, key string) bool {
	if key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.GetHeader(HeaderAdminKey)), []byte(key)) == 1
}
