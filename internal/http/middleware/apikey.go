package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// providerPrefixes maps known AI providers to the prefix their keys carry.
// Requests naming an unknown provider skip the prefix check entirely.
var providerPrefixes = map[string]string{
	"openai":    "sk-",
	"anthropic": "api-key-",
}

// APIKeyGate returns a middleware enforcing the x-api-key header on routes
// that talk to an AI provider. The key must be present and at least minLen
// characters after trimming. When the request names a provider (query
// parameter or JSON body field "provider") the key must also carry that
// provider's well-known prefix. The validated key is stored in the context
// for handlers via APIKey.
func APIKeyGate(minLen int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader("x-api-key"))
		if len(key) < minLen {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key format. API key is required in x-api-key header with a valid length."})
			return
		}

		provider := strings.ToLower(strings.TrimSpace(c.Query("provider")))
		if provider == "" {
			provider = bodyProvider(c)
		}
		if prefix, ok := providerPrefixes[provider]; ok && !strings.HasPrefix(key, prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key format for provider " + provider})
			return
		}

		c.Set(ctxAPIKeyKey, key)
		c.Next()
	}
}

// bodyProvider peeks at a JSON request body for a top-level "provider"
// field, restoring the body so downstream binding still works.
func bodyProvider(c *gin.Context) string {
	if c.Request.Body == nil || !strings.Contains(c.ContentType(), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(c.Request.Body)
	_ = c.Request.Body.Close()
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var probe struct {
		Provider string `json:"provider"`
	}
	if json.Unmarshal(raw, &probe) != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(probe.Provider))
}
