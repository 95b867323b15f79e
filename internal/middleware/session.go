package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quantix-mfg/qc-admin-api/internal/models"
	"github.com/quantix-mfg/qc-admin-api/internal/session"
	appErrors "github.com/quantix-mfg/qc-admin-api/pkg/errors"
	"github.com/quantix-mfg/qc-admin-api/pkg/response"
)

// ContextUserKey is the gin context key holding the request's SessionUser
// projection. The session store owns the data; this value is read-only for
// the duration of one request.
const ContextUserKey = "currentUser"

// SessionReader is the subset of the session store the middleware needs.
type SessionReader interface {
	Get(ctx context.Context, id string) (*models.SessionUser, error)
	Refresh(ctx context.Context, id string) error
	Destroy(ctx context.Context, id string) error
}

// SessionAuth requires a live server-side session. A missing cookie and an
// unknown id both answer 401; a stored session missing identity fields is
// treated as corrupted, destroyed, and rejected separately.
func SessionAuth(store SessionReader, cookieName string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(cookieName)
		if err != nil || sessionID == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		user, err := store.Get(ctx, sessionID)
		if err != nil {
			if err != session.ErrNoSession {
				logger.Error("session_lookup_failed", zap.Error(err))
			}
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "session expired or invalid"))
			c.Abort()
			return
		}

		if !user.Complete() {
			logger.Warn("corrupted_session_destroyed", zap.String("session_id", sessionID))
			_ = store.Destroy(ctx, sessionID)
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "corrupted session"))
			c.Abort()
			return
		}

		if err := store.Refresh(ctx, sessionID); err != nil {
			logger.Warn("session_refresh_failed", zap.Error(err))
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the session user attached by SessionAuth, or nil.
func CurrentUser(c *gin.Context) *models.SessionUser {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.SessionUser)
	if !ok {
		return nil
	}
	return user
}
