package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantix-mfg/qc-admin-api/internal/middleware"
	"github.com/quantix-mfg/qc-admin-api/internal/models"
	"github.com/quantix-mfg/qc-admin-api/internal/repository"
	"github.com/quantix-mfg/qc-admin-api/internal/service"
)

type userRepoMock struct {
	listFilter models.UserFilter
}

func (m *userRepoMock) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if id == 5 {
		return &models.User{ID: 5, Username: "inspector1", Role: models.RoleUser, IsActive: true}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *userRepoMock) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func (m *userRepoMock) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	m.listFilter = filter
	return []models.User{{ID: 5, Username: "inspector1", Role: models.RoleUser}}, 1, nil
}

func (m *userRepoMock) ExistsByUsername(ctx context.Context, username string, excludeID int64) (bool, error) {
	return false, nil
}

func (m *userRepoMock) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	return false, nil
}

func (m *userRepoMock) CreateUser(ctx context.Context, in repository.CreateUser, userID int64) (*models.User, error) {
	return &models.User{ID: 100, Username: in.Username, Role: in.Role, IsActive: in.IsActive}, nil
}

func (m *userRepoMock) UpdateUser(ctx context.Context, id int64, in repository.UpdateUser, userID int64) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func (m *userRepoMock) UpdatePassword(ctx context.Context, id int64, passwordHash string, userID int64) error {
	return nil
}

func newUserHandlerTest() (*UserHandler, *userRepoMock) {
	repo := &userRepoMock{}
	users := service.NewUserService(repo, nil, nil)
	// the embedded generic handler is not exercised by these tests
	return NewUserHandler(nil, users), repo
}

func userContext(t *testing.T, method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func adminContext(c *gin.Context) {
	c.Set(middleware.ContextUserKey, &models.SessionUser{ID: 1, Username: "root", Role: models.RoleAdmin, IsActive: true})
}

func TestUserHandlerListRejectsUnknownRole(t *testing.T) {
	h, _ := newUserHandlerTest()
	c, w := userContext(t, http.MethodGet, "/users?role=superuser", nil)
	adminContext(c)

	h.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandlerListPassesFilter(t *testing.T) {
	h, repo := newUserHandlerTest()
	c, w := userContext(t, http.MethodGet, "/users?role=manager&isActive=true&search=lead", nil)
	adminContext(c)

	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, repo.listFilter.Role)
	assert.Equal(t, models.RoleManager, *repo.listFilter.Role)
	require.NotNil(t, repo.listFilter.IsActive)
	assert.True(t, *repo.listFilter.IsActive)
	assert.Equal(t, "lead", repo.listFilter.Search)
}

func TestUserHandlerGetBadID(t *testing.T) {
	h, _ := newUserHandlerTest()
	c, w := userContext(t, http.MethodGet, "/users/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	h.Get(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandlerGetNotFound(t *testing.T) {
	h, _ := newUserHandlerTest()
	c, w := userContext(t, http.MethodGet, "/users/99", nil)
	c.Params = gin.Params{{Key: "id", Value: "99"}}

	h.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserHandlerCreateWithoutSession(t *testing.T) {
	h, _ := newUserHandlerTest()
	c, w := userContext(t, http.MethodPost, "/users", service.CreateUserRequest{})

	h.Create(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandlerCreateSucceeds(t *testing.T) {
	h, _ := newUserHandlerTest()
	c, w := userContext(t, http.MethodPost, "/users", service.CreateUserRequest{
		Username: "inspector2",
		Email:    "inspector2@plant.example",
		Password: "longenough",
		Name:     "Inspector Two",
		Role:     models.RoleUser,
	})
	adminContext(c)

	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "inspector2")
	assert.NotContains(t, w.Body.String(), "longenough")
}

func TestUserHandlerChangePasswordForbiddenForOthers(t *testing.T) {
	h, _ := newUserHandlerTest()
	c, w := userContext(t, http.MethodPut, "/users/5/password", service.ChangePasswordRequest{NewPassword: "new password"})
	c.Params = gin.Params{{Key: "id", Value: "5"}}
	c.Set(middleware.ContextUserKey, &models.SessionUser{ID: 7, Username: "other", Role: models.RoleUser, IsActive: true})

	h.ChangePassword(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
