package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/quantix-mfg/qc-admin-api/internal/models"
	"github.com/quantix-mfg/qc-admin-api/internal/repository"
	appErrors "github.com/quantix-mfg/qc-admin-api/pkg/errors"
)

type userRepoMock struct {
	users         map[int64]*models.User
	usernameTaken bool
	emailTaken    bool
	created       *repository.CreateUser
	updated       *repository.UpdateUser
	passwordHash  string
}

func (m *userRepoMock) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *userRepoMock) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *userRepoMock) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	out := []models.User{}
	for _, user := range m.users {
		out = append(out, *user)
	}
	return out, len(out), nil
}

func (m *userRepoMock) ExistsByUsername(ctx context.Context, username string, excludeID int64) (bool, error) {
	return m.usernameTaken, nil
}

func (m *userRepoMock) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	return m.emailTaken, nil
}

func (m *userRepoMock) CreateUser(ctx context.Context, in repository.CreateUser, userID int64) (*models.User, error) {
	m.created = &in
	return &models.User{ID: 100, Username: in.Username, Email: in.Email, Name: in.Name, Role: in.Role, IsActive: in.IsActive}, nil
}

func (m *userRepoMock) UpdateUser(ctx context.Context, id int64, in repository.UpdateUser, userID int64) (*models.User, error) {
	if _, ok := m.users[id]; !ok {
		return nil, sql.ErrNoRows
	}
	m.updated = &in
	return m.users[id], nil
}

func (m *userRepoMock) UpdatePassword(ctx context.Context, id int64, passwordHash string, userID int64) error {
	m.passwordHash = passwordHash
	return nil
}

func adminActor() *models.SessionUser {
	return &models.SessionUser{ID: 1, Username: "root", Role: models.RoleAdmin, IsActive: true}
}

func managerActor() *models.SessionUser {
	return &models.SessionUser{ID: 2, Username: "qa.manager", Role: models.RoleManager, IsActive: true}
}

func validCreateRequest() CreateUserRequest {
	return CreateUserRequest{
		Username: "inspector1",
		Email:    "inspector1@plant.example",
		Password: "longenough",
		Name:     "Inspector One",
		Role:     models.RoleUser,
	}
}

func TestUserServiceCreateHashesPassword(t *testing.T) {
	repo := &userRepoMock{}
	svc := NewUserService(repo, nil, nil)

	user, err := svc.Create(context.Background(), validCreateRequest(), adminActor())
	require.NoError(t, err)
	assert.Equal(t, int64(100), user.ID)
	require.NotNil(t, repo.created)
	assert.NotEqual(t, "longenough", repo.created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.created.PasswordHash), []byte("longenough")))
	assert.True(t, repo.created.IsActive)
}

func TestUserServiceCreateShortPassword(t *testing.T) {
	svc := NewUserService(&userRepoMock{}, nil, nil)
	req := validCreateRequest()
	req.Password = "short"
	_, err := svc.Create(context.Background(), req, adminActor())
	assert.True(t, appErrors.IsKind(err, appErrors.ErrValidation))
}

func TestUserServiceCreateUnknownRole(t *testing.T) {
	svc := NewUserService(&userRepoMock{}, nil, nil)
	req := validCreateRequest()
	req.Role = "superuser"
	_, err := svc.Create(context.Background(), req, adminActor())
	assert.True(t, appErrors.IsKind(err, appErrors.ErrValidation))
}

func TestUserServicePrivilegedRoleRequiresAdmin(t *testing.T) {
	svc := NewUserService(&userRepoMock{}, nil, nil)

	req := validCreateRequest()
	req.Role = models.RoleManager
	_, err := svc.Create(context.Background(), req, managerActor())
	require.Error(t, err)
	assert.True(t, appErrors.IsKind(err, appErrors.ErrForbidden))

	// the same grant from an admin passes
	_, err = svc.Create(context.Background(), req, adminActor())
	assert.NoError(t, err)
}

func TestUserServiceCreateUsernameConflict(t *testing.T) {
	svc := NewUserService(&userRepoMock{usernameTaken: true}, nil, nil)
	_, err := svc.Create(context.Background(), validCreateRequest(), adminActor())
	require.Error(t, err)
	assert.True(t, appErrors.IsKind(err, appErrors.ErrConflict))
}

func TestUserServiceUpdateMissingUser(t *testing.T) {
	svc := NewUserService(&userRepoMock{users: map[int64]*models.User{}}, nil, nil)
	name := "Renamed"
	_, err := svc.Update(context.Background(), 42, UpdateUserRequest{Name: &name}, adminActor())
	assert.True(t, appErrors.IsKind(err, appErrors.ErrNotFound))
}

func TestUserServiceUpdateRoleEscalationBlocked(t *testing.T) {
	repo := &userRepoMock{users: map[int64]*models.User{5: {ID: 5, Username: "inspector1", Role: models.RoleUser}}}
	svc := NewUserService(repo, nil, nil)

	admin := models.RoleAdmin
	_, err := svc.Update(context.Background(), 5, UpdateUserRequest{Role: &admin}, managerActor())
	assert.True(t, appErrors.IsKind(err, appErrors.ErrForbidden))
	assert.Nil(t, repo.updated)
}

func TestUserServiceChangePasswordSelfRequiresOldPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("old password"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &userRepoMock{users: map[int64]*models.User{5: {ID: 5, Username: "inspector1", Role: models.RoleUser, PasswordHash: string(hash)}}}
	svc := NewUserService(repo, nil, nil)
	self := &models.SessionUser{ID: 5, Username: "inspector1", Role: models.RoleUser, IsActive: true}

	err = svc.ChangePassword(context.Background(), 5, ChangePasswordRequest{NewPassword: "new password"}, self)
	assert.True(t, appErrors.IsKind(err, appErrors.ErrValidation))

	err = svc.ChangePassword(context.Background(), 5, ChangePasswordRequest{OldPassword: "wrong", NewPassword: "new password"}, self)
	assert.True(t, appErrors.IsKind(err, appErrors.ErrInvalidCredentials))

	err = svc.ChangePassword(context.Background(), 5, ChangePasswordRequest{OldPassword: "old password", NewPassword: "new password"}, self)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.passwordHash), []byte("new password")))
}

func TestUserServiceChangePasswordAdminSkipsOldPassword(t *testing.T) {
	repo := &userRepoMock{users: map[int64]*models.User{5: {ID: 5, Username: "inspector1", Role: models.RoleUser, PasswordHash: "whatever"}}}
	svc := NewUserService(repo, nil, nil)

	err := svc.ChangePassword(context.Background(), 5, ChangePasswordRequest{NewPassword: "new password"}, adminActor())
	require.NoError(t, err)
}

func TestUserServiceChangePasswordForeignAccountBlocked(t *testing.T) {
	repo := &userRepoMock{users: map[int64]*models.User{5: {ID: 5, Username: "inspector1", Role: models.RoleUser}}}
	svc := NewUserService(repo, nil, nil)

	err := svc.ChangePassword(context.Background(), 5, ChangePasswordRequest{NewPassword: "new password"}, managerActor())
	assert.True(t, appErrors.IsKind(err, appErrors.ErrForbidden))
}
