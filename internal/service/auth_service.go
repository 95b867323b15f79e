package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/quantix-mfg/qc-admin-api/internal/models"
	appErrors "github.com/quantix-mfg/qc-admin-api/pkg/errors"
)

type authUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type sessionWriter interface {
	Create(ctx context.Context, user *models.SessionUser, remember bool) (string, error)
	Destroy(ctx context.Context, id string) error
}

// LoginRequest is the credentials payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember_me"`
}

// AuthService authenticates callers against stored credentials and manages
// their server-side sessions.
type AuthService struct {
	repo      authUserRepository
	sessions  sessionWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(repo authUserRepository, sessions sessionWriter, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{repo: repo, sessions: sessions, validator: validate, logger: logger}
}

// Login verifies credentials and creates a session. The returned id is the
// only thing the client ever holds; identity stays server-side.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*models.SessionUser, string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("login_rejected", zap.String("username", req.Username))
		return nil, "", appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	if !user.IsActive {
		return nil, "", appErrors.Clone(appErrors.ErrInactiveAccount, "")
	}

	sessionUser := models.SessionUserFromUser(user)
	sessionID, err := s.sessions.Create(ctx, sessionUser, req.Remember)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}

	s.logger.Info("login_succeeded",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
		zap.Bool("remember", req.Remember))
	return sessionUser, sessionID, nil
}

// Logout destroys the session; an already-expired session is not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to destroy session")
	}
	return nil
}
