package middlewares

import (
	"net/http"

	"github.com/etuitionbd/server/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// RequireRole must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "No token provided",
			})
			return
		}
		if role != required {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": required + " access required",
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin chains the token check and the admin role check.
func (m *AuthMiddleware) RequireAdmin() []gin.HandlerFunc {
	return []gin.HandlerFunc{m.RequireAuth(), m.RequireRole(user.RoleAdmin)}
}
