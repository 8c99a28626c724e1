package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/noticeboard-api/internal/models"
	appErrors "github.com/noah-isme/noticeboard-api/pkg/errors"
	"github.com/noah-isme/noticeboard-api/pkg/response"
)

// ContextUserKey is the gin context key storing verified token claims.
const ContextUserKey = "currentUser"

type tokenValidator interface {
	ValidateToken(token string) (*models.IdentityClaims, error)
}

// JWT protects routes by requiring a valid bearer token.
func JWT(tokens tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Abort(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			return
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			response.Abort(c, err)
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}
