package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/quantix-mfg/qc-admin-api/internal/entity"
	"github.com/quantix-mfg/qc-admin-api/internal/models"
)

const userColumns = "id, username, email, password_hash, name, description, role, position, is_active, created_by, updated_by, created_at, updated_at"

// CreateUser carries the columns settable on account creation.
type CreateUser struct {
	Username     string
	Email        string
	PasswordHash string
	Name         string
	Description  *string
	Role         models.Role
	Position     string
	IsActive     bool
}

// UpdateUser is a partial account update; nil fields are untouched.
type UpdateUser struct {
	Username    *string
	Email       *string
	Name        *string
	Description *string
	Role        *models.Role
	Position    *string
	IsActive    *bool
}

// UserRepository persists application accounts. The users table follows the
// base record shape, so the embedded generic repository serves the
// column-agnostic operations (health, statistics, status toggle, delete)
// while the user-specific projections live here.
type UserRepository struct {
	*entity.Repository
	db *sqlx.DB
}

// NewUserRepository constructs a UserRepository over the users table.
func NewUserRepository(db *sqlx.DB, cfg entity.Config) *UserRepository {
	return &UserRepository{Repository: entity.NewRepository(db, cfg), db: db}
}

// FindByID fetches a full account row.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername fetches an account by exact username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE username = $1", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns accounts matching the filter plus the unpaginated total.
func (r *UserRepository) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	conditions := []string{}
	args := []interface{}{}

	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *filter.IsActive)
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(LOWER(username) LIKE $%d OR LOWER(email) LIKE $%d OR LOWER(name) LIKE $%d)", n, n, n))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	opts := filter.Options
	sortBy := opts.SortBy
	allowedSorts := map[string]struct{}{
		"id": {}, "username": {}, "email": {}, "name": {}, "role": {},
		"is_active": {}, "created_at": {}, "updated_at": {},
	}
	if _, ok := allowedSorts[sortBy]; !ok {
		sortBy = "username"
	}
	order := strings.ToUpper(opts.SortOrder)
	if order != models.SortAsc && order != models.SortDesc {
		order = models.SortAsc
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	cfg := r.Config()
	if limit <= 0 || limit > cfg.MaxLimit {
		limit = cfg.DefaultLimit
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf("SELECT %s FROM users%s ORDER BY %s %s LIMIT %d OFFSET %d",
		userColumns, where, sortBy, order, limit, offset)

	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM users%s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	return users, total, nil
}

// ExistsByUsername checks username uniqueness, optionally excluding one id.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string, excludeID int64) (bool, error) {
	return r.exists(ctx, "username", username, excludeID)
}

// ExistsByEmail checks email uniqueness, optionally excluding one id.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.exists(ctx, "email", email, excludeID)
}

func (r *UserRepository) exists(ctx context.Context, column, value string, excludeID int64) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM users WHERE LOWER(%s) = LOWER($1)", column)
	args := []interface{}{value}
	if excludeID > 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check %s: %w", column, err)
	}
	return true, nil
}

// CreateUser inserts a new account and returns the stored row.
func (r *UserRepository) CreateUser(ctx context.Context, in CreateUser, userID int64) (*models.User, error) {
	query := fmt.Sprintf(`INSERT INTO users (username, email, password_hash, name, description, role, position, is_active, created_by, updated_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9, $10, $10) RETURNING %s`, userColumns)

	now := time.Now().UTC()
	var user models.User
	err := r.db.GetContext(ctx, &user, query,
		in.Username, in.Email, in.PasswordHash, in.Name, in.Description, in.Role, in.Position, in.IsActive, userID, now)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// UpdateUser applies the non-nil fields of the partial payload; audit
// columns always advance. Zero matched rows surface as sql.ErrNoRows.
func (r *UserRepository) UpdateUser(ctx context.Context, id int64, in UpdateUser, userID int64) (*models.User, error) {
	sets := []string{}
	args := []interface{}{}

	appendSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if in.Username != nil {
		appendSet("username", *in.Username)
	}
	if in.Email != nil {
		appendSet("email", *in.Email)
	}
	if in.Name != nil {
		appendSet("name", *in.Name)
	}
	if in.Description != nil {
		appendSet("description", *in.Description)
	}
	if in.Role != nil {
		appendSet("role", *in.Role)
	}
	if in.Position != nil {
		appendSet("position", *in.Position)
	}
	if in.IsActive != nil {
		appendSet("is_active", *in.IsActive)
	}
	appendSet("updated_by", userID)
	appendSet("updated_at", time.Now().UTC())

	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), userColumns)

	var user models.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePassword replaces the credential hash. Zero matched rows surface as
// sql.ErrNoRows.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string, userID int64) error {
	const query = `UPDATE users SET password_hash = $2, updated_by = $3, updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, passwordHash, userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
