package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pnf-horario-api/internal/middleware"
	"github.com/noah-isme/pnf-horario-api/internal/models"
	appErrors "github.com/noah-isme/pnf-horario-api/pkg/errors"
	"github.com/noah-isme/pnf-horario-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.CurrentClaims(c)
}

// actorFromContext returns the caller's user id, writing a 401 when the
// request carries no claims.
func actorFromContext(c *gin.Context) (string, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return claims.UserID, true
}
