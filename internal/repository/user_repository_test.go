package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantix-mfg/qc-admin-api/internal/entity"
	"github.com/quantix-mfg/qc-admin-api/internal/models"
)

func newUserRepoMock(t *testing.T) (*UserRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	repo := NewUserRepository(sqlxDB, userTestConfig())
	return repo, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func userTestConfig() entity.Config {
	return entity.Config{
		Name:             "user",
		Table:            "users",
		APIPath:          "/users",
		SearchableFields: []string{"name", "description"},
		DefaultLimit:     20,
		MaxLimit:         100,
	}
}

func userRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "name", "description", "role", "position", "is_active", "created_by", "updated_by", "created_at", "updated_at"}).
		AddRow(int64(5), "qa.lead", "qa@plant.example", "$2a$hash", "QA Lead", nil, "manager", "Lead", true, int64(1), int64(1), now, now)
}

func TestUserRepositoryFindByUsername(t *testing.T) {
	repo, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .+ FROM users WHERE username").
		WithArgs("qa.lead").
		WillReturnRows(userRows())

	user, err := repo.FindByUsername(context.Background(), "qa.lead")
	require.NoError(t, err)
	assert.Equal(t, int64(5), user.ID)
	assert.Equal(t, models.RoleManager, user.Role)
}

func TestUserRepositoryFindByIDNoRows(t *testing.T) {
	repo, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepositoryListUsersFilters(t *testing.T) {
	repo, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	role := models.RoleManager
	active := true
	mock.ExpectQuery("SELECT .+ FROM users WHERE role").
		WithArgs(role, true, "%lead%").
		WillReturnRows(userRows())
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(role, true, "%lead%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	users, total, err := repo.ListUsers(context.Background(), models.UserFilter{
		Role:     &role,
		IsActive: &active,
		Search:   "Lead",
		Options:  models.QueryOptions{Page: 1, Limit: 20},
	})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryListUsersSortFallback(t *testing.T) {
	repo, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .+ FROM users ORDER BY username ASC").
		WillReturnRows(userRows())
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, _, err := repo.ListUsers(context.Background(), models.UserFilter{
		Options: models.QueryOptions{SortBy: "password_hash", SortOrder: "bogus"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryExistsByUsername(t *testing.T) {
	repo, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT 1 FROM users WHERE LOWER").
		WithArgs("qa.lead").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))

	taken, err := repo.ExistsByUsername(context.Background(), "qa.lead", 0)
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestUserRepositoryExistsExcludesSelf(t *testing.T) {
	repo, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT 1 FROM users WHERE LOWER").
		WithArgs("qa@plant.example", int64(5)).
		WillReturnError(sql.ErrNoRows)

	taken, err := repo.ExistsByEmail(context.Background(), "qa@plant.example", 5)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUserRepositoryCreateUser(t *testing.T) {
	repo, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("qa.lead", "qa@plant.example", "$2a$hash", "QA Lead", nil, models.RoleManager, "Lead", true, int64(1), sqlmock.AnyArg()).
		WillReturnRows(userRows())

	user, err := repo.CreateUser(context.Background(), CreateUser{
		Username:     "qa.lead",
		Email:        "qa@plant.example",
		PasswordHash: "$2a$hash",
		Name:         "QA Lead",
		Role:         models.RoleManager,
		Position:     "Lead",
		IsActive:     true,
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, "qa.lead", user.Username)
}

func TestUserRepositoryUpdateUserPartial(t *testing.T) {
	repo, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	name := "QA Lead Sr"
	mock.ExpectQuery("UPDATE users SET name").
		WithArgs(name, int64(1), sqlmock.AnyArg(), int64(5)).
		WillReturnRows(userRows())

	user, err := repo.UpdateUser(context.Background(), 5, UpdateUser{Name: &name}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), user.ID)
}

func TestUserRepositoryUpdatePasswordMissingRow(t *testing.T) {
	repo, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs(int64(99), "$2a$new", int64(1), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePassword(context.Background(), 99, "$2a$new", 1)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
