package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sousamj2/explicolivais/pkg/auth"
)

// Context keys set by the auth middleware
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextTier   = "tier"
)

// TokenParser verifies session tokens
type TokenParser interface {
	ParseToken(tokenString string) (*auth.JWTCustomClaims, error)
}

// AuthMiddleware authenticates requests by the session cookie, falling back
// to an Authorization: Bearer header
type AuthMiddleware struct {
	tokens     TokenParser
	cookieName string
}

func NewAuthMiddleware(tokens TokenParser, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, cookieName: cookieName}
}

// RequireAuth rejects requests without a valid session
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, errType := m.extractToken(c)
		if token == "" {
			msg := "Unauthorized"
			if errType == "token_format" {
				msg = "Authorization header format must be Bearer {token}"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "error_type": errType})
			return
		}

		claims, err := m.tokens.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": "token_invalid"})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth sets the user when a valid session is present and lets
// anonymous requests through
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, _ := m.extractToken(c); token != "" {
			if claims, err := m.tokens.ParseToken(token); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

func (m *AuthMiddleware) extractToken(c *gin.Context) (string, string) {
	if m.cookieName != "" {
		if cookie, err := c.Cookie(m.cookieName); err == nil && cookie != "" {
			return cookie, ""
		}
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "token_missing"
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", "token_format"
	}
	return parts[1], ""
}

func setClaims(c *gin.Context, claims *auth.JWTCustomClaims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextTier, claims.Tier)
}

// UserID returns the authenticated user id, if any
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
