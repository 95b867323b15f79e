package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantix-mfg/qc-admin-api/internal/models"
	"github.com/quantix-mfg/qc-admin-api/internal/session"
)

type sessionReaderMock struct {
	user      *models.SessionUser
	getErr    error
	destroyed []string
	refreshed []string
}

func (m *sessionReaderMock) Get(ctx context.Context, id string) (*models.SessionUser, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.user, nil
}

func (m *sessionReaderMock) Refresh(ctx context.Context, id string) error {
	m.refreshed = append(m.refreshed, id)
	return nil
}

func (m *sessionReaderMock) Destroy(ctx context.Context, id string) error {
	m.destroyed = append(m.destroyed, id)
	return nil
}

func sessionRouter(store SessionReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", SessionAuth(store, "qc_session", nil), func(c *gin.Context) {
		user := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"username": user.Username})
	})
	return r
}

func performSession(r *gin.Engine, cookie string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "qc_session", Value: cookie})
	}
	r.ServeHTTP(w, req)
	return w
}

func TestSessionAuthMissingCookie(t *testing.T) {
	r := sessionRouter(&sessionReaderMock{})
	w := performSession(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionAuthUnknownSession(t *testing.T) {
	r := sessionRouter(&sessionReaderMock{getErr: session.ErrNoSession})
	w := performSession(r, "deadbeef")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "session expired or invalid")
}

func TestSessionAuthValidSessionAttachesUser(t *testing.T) {
	store := &sessionReaderMock{user: &models.SessionUser{ID: 9, Username: "qa.lead", Role: models.RoleManager, IsActive: true}}
	r := sessionRouter(store)

	w := performSession(r, "session-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "qa.lead")
	assert.Equal(t, []string{"session-1"}, store.refreshed)
}

func TestSessionAuthCorruptedSessionDestroyed(t *testing.T) {
	// a stored record missing the username is treated as corrupted
	store := &sessionReaderMock{user: &models.SessionUser{ID: 9, Role: models.RoleManager}}
	r := sessionRouter(store)

	w := performSession(r, "session-2")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "corrupted session")
	assert.Equal(t, []string{"session-2"}, store.destroyed)
	assert.Empty(t, store.refreshed)
}
