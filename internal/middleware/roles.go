package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/quantix-mfg/qc-admin-api/internal/models"
	appErrors "github.com/quantix-mfg/qc-admin-api/pkg/errors"
	"github.com/quantix-mfg/qc-admin-api/pkg/response"
)

// RequireRole enforces the minimum role for an operation. Must run after
// SessionAuth; a missing identity here is an authentication failure, a
// present-but-insufficient role is 403.
func RequireRole(required models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !user.Role.Satisfies(required) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
