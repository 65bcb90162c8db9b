package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/summarizer/internal/pkg/jwt"
	"github.com/mx-space/summarizer/internal/pkg/response"
)

const ContextKeySubject = "subject"

// Auth returns a middleware that enforces bearer JWT authentication.
// A signer without a secret lets every request through.
func Auth(signer *jwt.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if signer == nil || !signer.Enabled() {
			c.Next()
			return
		}
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c)
			return
		}
		claims, err := signer.Parse(token)
		if err != nil {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeySubject, claims.Subject)
		c.Next()
	}
}

// OptionalAuth records the subject of a valid token but never blocks the request.
func OptionalAuth(signer *jwt.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if signer != nil && signer.Enabled() {
			if token := extractToken(c); token != "" {
				if claims, err := signer.Parse(token); err == nil {
					c.Set(ContextKeySubject, claims.Subject)
				}
			}
		}
		c.Next()
	}
}

// CurrentSubject extracts the authenticated subject from context.
func CurrentSubject(c *gin.Context) string {
	v, _ := c.Get(ContextKeySubject)
	id, _ := v.(string)
	return id
}

// IsAuthenticated returns true if the request carried a valid token.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentSubject(c) != ""
}

func extractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if auth != "" {
		return NormalizeToken(auth)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
