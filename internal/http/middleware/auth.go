package middleware

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/intensify/intensify-backend/internal/services"
)

const (
	// ctxUserIDKey is the Gin context key for the authenticated principal.
	ctxUserIDKey = "userID"
	// ctxAPIKeyKey is the Gin context key for the validated provider key.
	ctxAPIKeyKey = "apiKey"
)

// bearerRE matches "Bearer <token>" with exactly one token.
var bearerRE = regexp.MustCompile(`^Bearer\s+(\S+)$`)

// TokenVerifier is the contract the auth middleware needs from the auth
// service: decode a credential into a stable user id or fail.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// UserID returns the authenticated user id set by Auth, or "".
func UserID(c *gin.Context) string {
	if v, ok := c.Get(ctxUserIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// APIKey returns the validated provider key set by APIKeyGate, or "".
func APIKey(c *gin.Context) string {
	if v, ok := c.Get(ctxAPIKeyKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Auth returns a middleware that authenticates requests via the
// Authorization header and stores the principal in the Gin context.
//
// Failure modes (all 401 with an {error} body):
//   - header missing                     → "Authorization header missing or malformed"
//   - header not "Bearer <token>" shaped → "Invalid authorization header format"
//   - token shorter than minTokenLen     → "Token missing or invalid format"
//   - token expired                      → "Token expired"
//   - anything else                      → "Invalid token"
func Auth(verifier TokenVerifier, minTokenLen int) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing or malformed"})
			return
		}
		m := bearerRE.FindStringSubmatch(header)
		if m == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}
		token := strings.TrimSpace(m[1])
		if len(token) < minTokenLen {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token missing or invalid format"})
			return
		}

		userID, err := verifier.VerifyToken(token)
		if err != nil {
			if errors.Is(err, services.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ctxUserIDKey, userID)
		c.Next()
	}
}
