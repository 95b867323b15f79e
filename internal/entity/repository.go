package entity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/quantix-mfg/qc-admin-api/internal/models"
)

// ErrDuplicateName is returned when an insert or update trips the unique
// name constraint of the entity table.
var ErrDuplicateName = errors.New("duplicate name")

const baseColumns = "id, name, description, is_active, created_by, updated_by, created_at, updated_at"

// CreateRecord carries the caller-settable fields of an insert. Audit fields
// are always derived from the acting user and the clock.
type CreateRecord struct {
	Name        string
	Description *string
	IsActive    bool
}

// UpdateRecord carries a partial update; nil fields are left untouched.
type UpdateRecord struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// Repository implements the generic persistence layer for one serial-ID
// entity table. It is the only component that touches the store.
type Repository struct {
	db  *sqlx.DB
	cfg Config
}

// NewRepository constructs a Repository bound to the given descriptor.
func NewRepository(db *sqlx.DB, cfg Config) *Repository {
	return &Repository{db: db, cfg: cfg}
}

// Config returns the descriptor the repository was built from.
func (r *Repository) Config() Config {
	return r.cfg
}

// DB exposes the underlying pool for derived repositories that run
// transactional writes across related tables.
func (r *Repository) DB() *sqlx.DB {
	return r.db
}

// GetByID fetches a single record. sql.ErrNoRows is passed through.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", baseColumns, r.cfg.Table)
	var rec models.Record
	if err := r.db.GetContext(ctx, &rec, query, id); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetByName fetches a record by exact, case-insensitive name.
func (r *Repository) GetByName(ctx context.Context, name string) (*models.Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE LOWER(name) = LOWER($1)", baseColumns, r.cfg.Table)
	var rec models.Record
	if err := r.db.GetContext(ctx, &rec, query, name); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns records matching the options plus the unpaginated total. The
// search term is matched case-insensitively across the configured fields.
func (r *Repository) List(ctx context.Context, opts models.QueryOptions) ([]models.Record, int, error) {
	return r.list(ctx, opts, r.cfg.SearchableFields)
}

// SearchByName matches the term against the name column only.
func (r *Repository) SearchByName(ctx context.Context, term string, opts models.QueryOptions) ([]models.Record, int, error) {
	opts.Search = term
	return r.list(ctx, opts, []string{"name"})
}

// SearchByPattern matches the pattern against name and description.
func (r *Repository) SearchByPattern(ctx context.Context, pattern string, opts models.QueryOptions) ([]models.Record, int, error) {
	opts.Search = pattern
	return r.list(ctx, opts, []string{"name", "description"})
}

// FilterByStatus lists records with the given active flag.
func (r *Repository) FilterByStatus(ctx context.Context, active bool, opts models.QueryOptions) ([]models.Record, int, error) {
	opts.Search = ""
	opts.IsActive = &active
	return r.list(ctx, opts, nil)
}

// Count returns the total matching the options without fetching rows.
func (r *Repository) Count(ctx context.Context, opts models.QueryOptions) (int, error) {
	where, args := r.whereClause(opts, r.cfg.SearchableFields)
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", r.cfg.Table, where)
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.cfg.Name, err)
	}
	return total, nil
}

func (r *Repository) list(ctx context.Context, opts models.QueryOptions, searchFields []string) ([]models.Record, int, error) {
	where, args := r.whereClause(opts, searchFields)

	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit <= 0 || limit > r.cfg.MaxLimit {
		limit = r.cfg.DefaultLimit
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT %d OFFSET %d",
		baseColumns, r.cfg.Table, where, orderClause(opts), limit, offset)

	records := []models.Record{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.cfg.Name, err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", r.cfg.Table, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.cfg.Name, err)
	}
	return records, total, nil
}

// whereClause builds the conjunction of the optional is_active predicate and
// the OR-chain of LIKE matches over searchFields. Field names come from the
// compile-time config, never from the request; the search value itself is
// always bound as a parameter.
func (r *Repository) whereClause(opts models.QueryOptions, searchFields []string) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}

	if opts.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *opts.IsActive)
	}

	if opts.Search != "" && len(searchFields) > 0 {
		args = append(args, "%"+strings.ToLower(opts.Search)+"%")
		likes := make([]string, 0, len(searchFields))
		for _, field := range searchFields {
			likes = append(likes, fmt.Sprintf("LOWER(%s) LIKE $%d", field, len(args)))
		}
		conditions = append(conditions, "("+strings.Join(likes, " OR ")+")")
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// orderClause validates the sort column against the allow-list and the
// direction against ASC/DESC; anything else falls back silently so ordering
// input can never reach the SQL text.
func orderClause(opts models.QueryOptions) string {
	column := opts.SortBy
	if !IsSortColumn(column) {
		column = "name"
	}
	direction := strings.ToUpper(opts.SortOrder)
	if direction != models.SortAsc && direction != models.SortDesc {
		direction = models.SortAsc
	}
	return column + " " + direction
}

// Create inserts a record with audit fields set to the acting user and a
// single timestamp for created_at and updated_at. A unique-name collision
// surfaces as ErrDuplicateName.
func (r *Repository) Create(ctx context.Context, in CreateRecord, userID int64) (*models.Record, error) {
	query := fmt.Sprintf(`INSERT INTO %s (name, description, is_active, created_by, updated_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4, $5, $5) RETURNING %s`, r.cfg.Table, baseColumns)

	now := time.Now().UTC()
	var rec models.Record
	if err := r.db.GetContext(ctx, &rec, query, in.Name, in.Description, in.IsActive, userID, now); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("create %s: %w", r.cfg.Name, err)
	}
	return &rec, nil
}

// Update applies the non-nil fields of the partial payload. updated_by and
// updated_at are overwritten on every call, including an empty payload.
// Zero matched rows surface as sql.ErrNoRows.
func (r *Repository) Update(ctx context.Context, id int64, in UpdateRecord, userID int64) (*models.Record, error) {
	sets := []string{}
	args := []interface{}{}

	if in.Name != nil {
		args = append(args, *in.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if in.Description != nil {
		args = append(args, *in.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}
	if in.IsActive != nil {
		args = append(args, *in.IsActive)
		sets = append(sets, fmt.Sprintf("is_active = $%d", len(args)))
	}

	args = append(args, userID)
	sets = append(sets, fmt.Sprintf("updated_by = $%d", len(args)))
	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))

	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		r.cfg.Table, strings.Join(sets, ", "), len(args), baseColumns)

	var rec models.Record
	if err := r.db.GetContext(ctx, &rec, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return &rec, nil
}

// Delete hard-deletes a record. Zero matched rows surface as sql.ErrNoRows.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.cfg.Table)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.cfg.Name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.cfg.Name, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ToggleStatus flips is_active in a single statement so there is no
// read-then-write race. Returns the new flag value.
func (r *Repository) ToggleStatus(ctx context.Context, id int64, userID int64) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET is_active = NOT is_active, updated_by = $2, updated_at = $3
WHERE id = $1 RETURNING is_active`, r.cfg.Table)
	var active bool
	if err := r.db.GetContext(ctx, &active, query, id, userID, time.Now().UTC()); err != nil {
		return false, err
	}
	return active, nil
}

// Health classifies the table: unhealthy when the store is unreachable,
// warning when empty or fully inactive, healthy otherwise.
func (r *Repository) Health(ctx context.Context) (*models.EntityHealth, error) {
	health := &models.EntityHealth{Entity: r.cfg.Name, CheckedAt: time.Now().UTC()}

	if err := r.db.PingContext(ctx); err != nil {
		health.Status = models.HealthUnhealthy
		return health, nil
	}

	query := fmt.Sprintf(`SELECT COUNT(*) AS total,
COUNT(*) FILTER (WHERE is_active) AS active,
MAX(updated_at) AS last_updated
FROM %s`, r.cfg.Table)

	var row struct {
		Total       int        `db:"total"`
		Active      int        `db:"active"`
		LastUpdated *time.Time `db:"last_updated"`
	}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return nil, fmt.Errorf("health %s: %w", r.cfg.Name, err)
	}

	health.Total = row.Total
	health.Active = row.Active
	health.Inactive = row.Total - row.Active
	health.LastUpdated = row.LastUpdated

	switch {
	case row.Total == 0:
		health.Status = models.HealthWarning
	case row.Active == 0:
		health.Status = models.HealthWarning
	default:
		health.Status = models.HealthHealthy
	}
	return health, nil
}

// Statistics aggregates table counters for the statistics endpoint.
func (r *Repository) Statistics(ctx context.Context) (*models.EntityStats, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) AS total,
COUNT(*) FILTER (WHERE is_active) AS active,
COUNT(*) FILTER (WHERE NOT is_active) AS inactive,
COUNT(*) FILTER (WHERE created_at >= NOW() - INTERVAL '30 days') AS created_last_30_days,
COUNT(*) FILTER (WHERE updated_at >= NOW() - INTERVAL '30 days') AS updated_last_30_days,
COUNT(*) FILTER (WHERE description IS NOT NULL AND description <> '') AS with_description,
COUNT(*) FILTER (WHERE description IS NULL OR description = '') AS without_description
FROM %s`, r.cfg.Table)

	var stats models.EntityStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("statistics %s: %w", r.cfg.Name, err)
	}
	stats.Entity = r.cfg.Name
	return &stats, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
