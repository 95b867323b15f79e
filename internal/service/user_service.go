package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/quantix-mfg/qc-admin-api/internal/models"
	"github.com/quantix-mfg/qc-admin-api/internal/repository"
	appErrors "github.com/quantix-mfg/qc-admin-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	ExistsByUsername(ctx context.Context, username string, excludeID int64) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	CreateUser(ctx context.Context, in repository.CreateUser, userID int64) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, in repository.UpdateUser, userID int64) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string, userID int64) error
}

// CreateUserRequest holds the payload for creating an account.
type CreateUserRequest struct {
	Username    string      `json:"username" validate:"required,min=3,max=50"`
	Email       string      `json:"email" validate:"required,email"`
	Password    string      `json:"password" validate:"required,min=8"`
	Name        string      `json:"name" validate:"required,max=100"`
	Description *string     `json:"description,omitempty"`
	Role        models.Role `json:"role" validate:"required"`
	Position    string      `json:"position"`
	IsActive    *bool       `json:"is_active,omitempty"`
}

// UpdateUserRequest holds a partial account update.
type UpdateUserRequest struct {
	Username    *string      `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	Email       *string      `json:"email,omitempty" validate:"omitempty,email"`
	Name        *string      `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string      `json:"description,omitempty"`
	Role        *models.Role `json:"role,omitempty"`
	Position    *string      `json:"position,omitempty"`
	IsActive    *bool        `json:"is_active,omitempty"`
}

// ChangePasswordRequest carries a credential change. OldPassword is required
// when callers change their own password; admins may omit it.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// UserService layers account-specific rules (credential hashing, uniqueness,
// role assignment permissions) on top of the generic entity lifecycle.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// List returns accounts with pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.ListUsers(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	page := filter.Options.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Options.Limit
	if limit <= 0 {
		limit = 20
	}
	return users, models.NewPagination(page, limit, total), nil
}

// Get fetches one account.
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "id must be a positive integer")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// Create registers a new account on behalf of the actor. Assigning admin or
// manager roles requires an admin actor; this is the permission hook that
// runs after shape validation and before the store write.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest, actor *models.SessionUser) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	if !req.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	if err := s.checkRoleAssignment(req.Role, actor); err != nil {
		return nil, err
	}
	if req.Description != nil && *req.Description == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "description cannot be empty if provided")
	}

	if taken, err := s.repo.ExistsByUsername(ctx, req.Username, 0); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate username")
	} else if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already in use")
	}
	if taken, err := s.repo.ExistsByEmail(ctx, req.Email, 0); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	} else if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already in use")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	user, err := s.repo.CreateUser(ctx, repository.CreateUser{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		Name:         req.Name,
		Description:  req.Description,
		Role:         req.Role,
		Position:     req.Position,
		IsActive:     active,
	}, actor.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.logger.Info("user_created", zap.Int64("id", user.ID), zap.String("role", string(user.Role)), zap.Int64("actor_id", actor.ID))
	return user, nil
}

// Update applies a partial account update with the same role-assignment
// permission hook as Create.
func (s *UserService) Update(ctx context.Context, id int64, req UpdateUserRequest, actor *models.SessionUser) (*models.User, error) {
	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "id must be a positive integer")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
		}
		if err := s.checkRoleAssignment(*req.Role, actor); err != nil {
			return nil, err
		}
	}
	if req.Description != nil && *req.Description == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "description cannot be empty if provided")
	}

	if req.Username != nil {
		if taken, err := s.repo.ExistsByUsername(ctx, *req.Username, id); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate username")
		} else if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, "username already in use")
		}
	}
	if req.Email != nil {
		if taken, err := s.repo.ExistsByEmail(ctx, *req.Email, id); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
		} else if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already in use")
		}
	}

	user, err := s.repo.UpdateUser(ctx, id, repository.UpdateUser{
		Username:    req.Username,
		Email:       req.Email,
		Name:        req.Name,
		Description: req.Description,
		Role:        req.Role,
		Position:    req.Position,
		IsActive:    req.IsActive,
	}, actor.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}

	s.logger.Info("user_updated", zap.Int64("id", id), zap.Int64("actor_id", actor.ID))
	return user, nil
}

// ChangePassword replaces an account credential. Admins may change any
// password without the old one; everyone else only their own, verified
// against the current hash.
func (s *UserService) ChangePassword(ctx context.Context, id int64, req ChangePasswordRequest, actor *models.SessionUser) error {
	if id <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "id must be a positive integer")
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid password payload")
	}

	isSelf := actor != nil && actor.ID == id
	isAdmin := actor != nil && actor.Role == models.RoleAdmin
	if !isSelf && !isAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot change another user's password")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if isSelf && !isAdmin {
		if req.OldPassword == "" {
			return appErrors.Clone(appErrors.ErrValidation, "old password is required")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
			return appErrors.Clone(appErrors.ErrInvalidCredentials, "old password does not match")
		}
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	if err := s.repo.UpdatePassword(ctx, id, string(newHash), actor.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}

	s.logger.Info("password_changed", zap.Int64("id", id), zap.Int64("actor_id", actor.ID))
	return nil
}

// checkRoleAssignment restricts privileged role grants to admin actors.
func (s *UserService) checkRoleAssignment(role models.Role, actor *models.SessionUser) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if (role == models.RoleAdmin || role == models.RoleManager) && actor.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only admins can assign privileged roles")
	}
	return nil
}
