package middlewares

import (
	"net/http"
	"strings"

	"github.com/etuitionbd/server/internal/actorctx"
	"github.com/etuitionbd/server/internal/auth"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifyToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// RequireAuth rejects a request without a bearer token with 401 and one whose token
// does not verify with 403.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "No token provided",
			})
			return
		}

		claims, err := m.jwt.VerifyToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "Invalid or expired token",
			})
			return
		}

		// Stash useful bits of identity on the context
		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxEmailKey, claims.Email)
		c.Set(ctxRoleKey, claims.Role)
		c.Request = c.Request.WithContext(actorctx.With(c.Request.Context(), actorctx.Actor{
			UserID: claims.UserID,
			Role:   claims.Role,
		}))

		c.Next()
	}
}

// bearerToken extracts the token from "Bearer <token>"; the scheme is case-insensitive.
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Optional helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (string, bool) {
	return stringFromContext(c, ctxUserIDKey)
}

func EmailFromContext(c *gin.Context) (string, bool) {
	return stringFromContext(c, ctxEmailKey)
}

func RoleFromContext(c *gin.Context) (string, bool) {
	return stringFromContext(c, ctxRoleKey)
}

func stringFromContext(c *gin.Context, key string) (string, bool) {
	v, ok := c.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}
