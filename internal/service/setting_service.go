package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/quantix-mfg/qc-admin-api/internal/entity"
	"github.com/quantix-mfg/qc-admin-api/internal/mail"
	"github.com/quantix-mfg/qc-admin-api/internal/models"
	appErrors "github.com/quantix-mfg/qc-admin-api/pkg/errors"
)

// DiagnosticResult reports the outcome of one connectivity check.
type DiagnosticResult struct {
	Check     string    `json:"check"`
	OK        bool      `json:"ok"`
	Detail    string    `json:"detail,omitempty"`
	Duration  string    `json:"duration"`
	CheckedAt time.Time `json:"checked_at"`
}

// SettingService wraps the generic entity service for system settings. It
// adds a uniqueness pre-check with a domain-specific message and hosts the
// connectivity diagnostics (SMTP relay, secondary database) that live under
// the settings resource.
type SettingService struct {
	*entity.Service
	mailer    mail.Transport
	secondary *sqlx.DB
	logger    *zap.Logger
}

// NewSettingService constructs a SettingService. Both collaborators are
// optional; their diagnostics report not-configured when absent.
func NewSettingService(base *entity.Service, mailer mail.Transport, secondary *sqlx.DB, logger *zap.Logger) *SettingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingService{Service: base, mailer: mailer, secondary: secondary, logger: logger}
}

// Create rejects duplicate setting names before the insert so the caller
// gets a setting-specific message instead of the generic constraint error.
func (s *SettingService) Create(ctx context.Context, in entity.CreateInput, userID int64) (*models.Record, error) {
	if err := s.ValidateCreate(in); err != nil {
		return nil, err
	}
	if _, err := s.GetByName(ctx, in.Name); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "setting with this name already exists")
	} else if !appErrors.IsKind(err, appErrors.ErrNotFound) {
		return nil, err
	}
	return s.Service.Create(ctx, in, userID)
}

// GetByName resolves one setting by exact name.
func (s *SettingService) GetByName(ctx context.Context, name string) (*models.Record, error) {
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "setting name is required")
	}
	rec, err := s.Store().GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "setting not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load setting")
	}
	return rec, nil
}

// VerifySMTP checks reachability of the configured mail relay.
func (s *SettingService) VerifySMTP(ctx context.Context) *DiagnosticResult {
	result := &DiagnosticResult{Check: "smtp", CheckedAt: time.Now().UTC()}
	if s.mailer == nil {
		result.Detail = "smtp transport is not configured"
		result.Duration = "0s"
		return result
	}

	start := time.Now()
	err := s.mailer.Verify(ctx)
	result.Duration = time.Since(start).Round(time.Millisecond).String()
	if err != nil {
		s.logger.Warn("smtp_verify_failed", zap.Error(err))
		result.Detail = err.Error()
		return result
	}
	result.OK = true
	return result
}

// PingSecondaryDB checks reachability of the reporting replica.
func (s *SettingService) PingSecondaryDB(ctx context.Context) *DiagnosticResult {
	result := &DiagnosticResult{Check: "secondary_database", CheckedAt: time.Now().UTC()}
	if s.secondary == nil {
		result.Detail = "secondary database is not configured"
		result.Duration = "0s"
		return result
	}

	start := time.Now()
	err := s.secondary.PingContext(ctx)
	result.Duration = time.Since(start).Round(time.Millisecond).String()
	if err != nil {
		s.logger.Warn("secondary_db_ping_failed", zap.Error(err))
		result.Detail = err.Error()
		return result
	}
	result.OK = true
	return result
}
