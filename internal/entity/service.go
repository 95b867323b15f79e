package entity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/quantix-mfg/qc-admin-api/internal/models"
	appErrors "github.com/quantix-mfg/qc-admin-api/pkg/errors"
	"github.com/quantix-mfg/qc-admin-api/pkg/export"
)

// Store is the persistence contract the generic service consumes. Derived
// repositories satisfy it by embedding *Repository.
type Store interface {
	GetByID(ctx context.Context, id int64) (*models.Record, error)
	GetByName(ctx context.Context, name string) (*models.Record, error)
	List(ctx context.Context, opts models.QueryOptions) ([]models.Record, int, error)
	SearchByName(ctx context.Context, term string, opts models.QueryOptions) ([]models.Record, int, error)
	SearchByPattern(ctx context.Context, pattern string, opts models.QueryOptions) ([]models.Record, int, error)
	FilterByStatus(ctx context.Context, active bool, opts models.QueryOptions) ([]models.Record, int, error)
	Create(ctx context.Context, in CreateRecord, userID int64) (*models.Record, error)
	Update(ctx context.Context, id int64, in UpdateRecord, userID int64) (*models.Record, error)
	Delete(ctx context.Context, id int64) error
	ToggleStatus(ctx context.Context, id int64, userID int64) (bool, error)
	Health(ctx context.Context) (*models.EntityHealth, error)
	Statistics(ctx context.Context) (*models.EntityStats, error)
}

// CreateInput is the caller payload for creating a record.
type CreateInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// UpdateInput is the partial payload for updating a record. Absent fields
// are left unchanged; updated_by/updated_at always advance.
type UpdateInput struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// Service wraps the repository with input validation, option defaulting and
// typed error translation. It is stateless between calls and never lets a
// raw store error cross its boundary.
type Service struct {
	store     Store
	cfg       Config
	validator *validator.Validate
	logger    *zap.Logger
}

// NewService constructs the generic entity service.
func NewService(store Store, cfg Config, validate *validator.Validate, logger *zap.Logger) *Service {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, cfg: cfg, validator: validate, logger: logger}
}

// Config returns the entity descriptor.
func (s *Service) Config() Config {
	return s.cfg
}

// Store exposes the persistence layer to derived services.
func (s *Service) Store() Store {
	return s.store
}

// NormalizeOptions applies configuration defaults and clamps pagination.
func (s *Service) NormalizeOptions(opts models.QueryOptions) models.QueryOptions {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = s.cfg.DefaultLimit
	}
	if opts.Limit > s.cfg.MaxLimit {
		opts.Limit = s.cfg.MaxLimit
	}
	if !IsSortColumn(opts.SortBy) {
		opts.SortBy = "name"
	}
	if opts.SortOrder != models.SortAsc && opts.SortOrder != models.SortDesc {
		opts.SortOrder = models.SortAsc
	}
	return opts
}

// Get fetches one record by id.
func (s *Service) Get(ctx context.Context, id int64) (*models.Record, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, "failed to load "+s.cfg.Name)
	}
	return rec, nil
}

// List returns a page of records with pagination metadata.
func (s *Service) List(ctx context.Context, opts models.QueryOptions) ([]models.Record, *models.Pagination, error) {
	opts = s.NormalizeOptions(opts)
	records, total, err := s.store.List(ctx, opts)
	if err != nil {
		return nil, nil, s.translate(err, "failed to list "+s.cfg.Name)
	}
	return records, models.NewPagination(opts.Page, opts.Limit, total), nil
}

// SearchByName looks up records whose name contains the term.
func (s *Service) SearchByName(ctx context.Context, term string, opts models.QueryOptions) ([]models.Record, *models.Pagination, error) {
	if term == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "search term is required")
	}
	opts = s.NormalizeOptions(opts)
	records, total, err := s.store.SearchByName(ctx, term, opts)
	if err != nil {
		return nil, nil, s.translate(err, "failed to search "+s.cfg.Name)
	}
	return records, models.NewPagination(opts.Page, opts.Limit, total), nil
}

// SearchByPattern looks up records whose name or description contains the
// pattern.
func (s *Service) SearchByPattern(ctx context.Context, pattern string, opts models.QueryOptions) ([]models.Record, *models.Pagination, error) {
	if pattern == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "search pattern is required")
	}
	opts = s.NormalizeOptions(opts)
	records, total, err := s.store.SearchByPattern(ctx, pattern, opts)
	if err != nil {
		return nil, nil, s.translate(err, "failed to search "+s.cfg.Name)
	}
	return records, models.NewPagination(opts.Page, opts.Limit, total), nil
}

// FilterByStatus lists records with the requested active flag. The status
// argument accepts only the literal strings "active" and "inactive".
func (s *Service) FilterByStatus(ctx context.Context, status string, opts models.QueryOptions) ([]models.Record, *models.Pagination, error) {
	var active bool
	switch status {
	case "active":
		active = true
	case "inactive":
		active = false
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, `status must be "active" or "inactive"`)
	}
	opts = s.NormalizeOptions(opts)
	records, total, err := s.store.FilterByStatus(ctx, active, opts)
	if err != nil {
		return nil, nil, s.translate(err, "failed to filter "+s.cfg.Name)
	}
	return records, models.NewPagination(opts.Page, opts.Limit, total), nil
}

// ValidateCreate applies the baseline payload rules. Derived services call
// it first and layer their domain rules on top.
func (s *Service) ValidateCreate(in CreateInput) error {
	if err := s.validator.Struct(in); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
			fmt.Sprintf("invalid %s payload", s.cfg.Name))
	}
	if in.Description != nil && *in.Description == "" {
		return appErrors.Clone(appErrors.ErrValidation, "description cannot be empty if provided")
	}
	return nil
}

// ValidateUpdate applies the baseline rules to a partial payload.
func (s *Service) ValidateUpdate(in UpdateInput) error {
	if err := s.validator.Struct(in); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
			fmt.Sprintf("invalid %s payload", s.cfg.Name))
	}
	if in.Description != nil && *in.Description == "" {
		return appErrors.Clone(appErrors.ErrValidation, "description cannot be empty if provided")
	}
	return nil
}

// Create validates and inserts a record on behalf of userID.
func (s *Service) Create(ctx context.Context, in CreateInput, userID int64) (*models.Record, error) {
	if err := s.ValidateCreate(in); err != nil {
		return nil, err
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	rec, err := s.store.Create(ctx, CreateRecord{Name: in.Name, Description: in.Description, IsActive: active}, userID)
	if err != nil {
		return nil, s.translate(err, "failed to create "+s.cfg.Name)
	}
	s.logger.Info("entity_created", zap.String("entity", s.cfg.Name), zap.Int64("id", rec.ID), zap.Int64("user_id", userID))
	return rec, nil
}

// Update validates and applies a partial update on behalf of userID.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput, userID int64) (*models.Record, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	if err := s.ValidateUpdate(in); err != nil {
		return nil, err
	}
	rec, err := s.store.Update(ctx, id, UpdateRecord{Name: in.Name, Description: in.Description, IsActive: in.IsActive}, userID)
	if err != nil {
		return nil, s.translate(err, "failed to update "+s.cfg.Name)
	}
	s.logger.Info("entity_updated", zap.String("entity", s.cfg.Name), zap.Int64("id", id), zap.Int64("user_id", userID))
	return rec, nil
}

// Delete hard-deletes a record.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return s.translate(err, "failed to delete "+s.cfg.Name)
	}
	s.logger.Info("entity_deleted", zap.String("entity", s.cfg.Name), zap.Int64("id", id))
	return nil
}

// ToggleStatus flips the soft-status flag and returns the new value.
func (s *Service) ToggleStatus(ctx context.Context, id int64, userID int64) (bool, error) {
	if err := validateID(id); err != nil {
		return false, err
	}
	active, err := s.store.ToggleStatus(ctx, id, userID)
	if err != nil {
		return false, s.translate(err, "failed to change "+s.cfg.Name+" status")
	}
	s.logger.Info("entity_status_toggled", zap.String("entity", s.cfg.Name), zap.Int64("id", id), zap.Bool("is_active", active))
	return active, nil
}

// Health reports store reachability and record counts for the table.
func (s *Service) Health(ctx context.Context) (*models.EntityHealth, error) {
	health, err := s.store.Health(ctx)
	if err != nil {
		return nil, s.translate(err, "failed to check "+s.cfg.Name+" health")
	}
	return health, nil
}

// Statistics returns the aggregate counters for the table.
func (s *Service) Statistics(ctx context.Context) (*models.EntityStats, error) {
	stats, err := s.store.Statistics(ctx)
	if err != nil {
		return nil, s.translate(err, "failed to load "+s.cfg.Name+" statistics")
	}
	return stats, nil
}

// ExportDataset renders the full filtered list into a tabular dataset for
// the export endpoint. Pagination is widened to the configured maximum.
func (s *Service) ExportDataset(ctx context.Context, opts models.QueryOptions) (export.Dataset, error) {
	opts = s.NormalizeOptions(opts)
	opts.Limit = s.cfg.MaxLimit
	records, _, err := s.store.List(ctx, opts)
	if err != nil {
		return export.Dataset{}, s.translate(err, "failed to export "+s.cfg.Name)
	}

	dataset := export.Dataset{
		Headers: []string{"ID", "Name", "Description", "Active", "Created At", "Updated At"},
		Rows:    make([]map[string]string, 0, len(records)),
	}
	for _, rec := range records {
		description := ""
		if rec.Description != nil {
			description = *rec.Description
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":          strconv.FormatInt(rec.ID, 10),
			"Name":        rec.Name,
			"Description": description,
			"Active":      strconv.FormatBool(rec.IsActive),
			"Created At":  rec.CreatedAt.Format("2006-01-02 15:04"),
			"Updated At":  rec.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	return dataset, nil
}

// translate maps store failures onto the typed error taxonomy. Raw store
// errors never escape the service.
func (s *Service) translate(err error, message string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, s.cfg.Name+" not found")
	case errors.Is(err, ErrDuplicateName):
		return appErrors.Clone(appErrors.ErrConflict, s.cfg.Name+" with this name already exists")
	default:
		s.logger.Error("entity_store_error", zap.String("entity", s.cfg.Name), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
	}
}

func validateID(id int64) error {
	if id <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "id must be a positive integer")
	}
	return nil
}
