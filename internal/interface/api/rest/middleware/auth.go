package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"filesharing-api/internal/infrastructure/jwt"
)

const CtxRole = "role"

// AuthMiddleware guards the administrative endpoints. Link downloads are
// deliberately unauthenticated: possession of the link id is the capability.
func AuthMiddleware(jwtService *jwt.Service, requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "missing Authorization header"},
			)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "invalid token format"},
			)
			return
		}

		claims, err := jwtService.ValidateToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "invalid token"},
			)
			return
		}
		if requiredRole != "" && claims.Role != requiredRole {
			c.AbortWithStatusJSON(
				http.StatusForbidden,
				gin.H{"error": "insufficient role"},
			)
			return
		}

		c.Set(CtxRole, claims.Role)

		c.Next()
	}
}
