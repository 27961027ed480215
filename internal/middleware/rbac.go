package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pnf-horario-api/internal/models"
	appErrors "github.com/noah-isme/pnf-horario-api/pkg/errors"
	"github.com/noah-isme/pnf-horario-api/pkg/response"
)

// RequireRoles lets through callers whose JWT role is listed. It must run
// after JWT.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := CurrentClaims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "role not allowed"))
			c.Abort()
			return
		}
		c.Next()
	}
}
