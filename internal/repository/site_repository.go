package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/quantix-mfg/qc-admin-api/internal/entity"
	"github.com/quantix-mfg/qc-admin-api/internal/models"
)

// SiteLink associates a customer account code with a site record.
type SiteLink struct {
	ID           int64     `db:"id" json:"id"`
	SiteID       int64     `db:"site_id" json:"site_id"`
	CustomerCode string    `db:"customer_code" json:"customer_code"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// SiteRepository persists customer sites. The base record operations come
// from the embedded generic repository; the composite writes that touch
// customer_site_links run here inside a single transaction.
type SiteRepository struct {
	*entity.Repository
	db *sqlx.DB
}

// NewSiteRepository constructs a SiteRepository over the customer_sites table.
func NewSiteRepository(db *sqlx.DB, cfg entity.Config) *SiteRepository {
	return &SiteRepository{Repository: entity.NewRepository(db, cfg), db: db}
}

// ListLinks returns the customer links for one site.
func (r *SiteRepository) ListLinks(ctx context.Context, siteID int64) ([]SiteLink, error) {
	const query = `SELECT id, site_id, customer_code, created_at FROM customer_site_links WHERE site_id = $1 ORDER BY customer_code ASC`
	links := []SiteLink{}
	if err := r.db.SelectContext(ctx, &links, query, siteID); err != nil {
		return nil, fmt.Errorf("list site links: %w", err)
	}
	return links, nil
}

// CreateWithLinks inserts the site row and its customer links in one
// transaction. The deferred rollback guarantees the connection is released
// on every failure path; it is a no-op after a successful commit.
func (r *SiteRepository) CreateWithLinks(ctx context.Context, in entity.CreateRecord, customerCodes []string, userID int64) (*models.Record, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin site tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	cfg := r.Config()
	query := fmt.Sprintf(`INSERT INTO %s (name, description, is_active, created_by, updated_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4, $5, $5) RETURNING id, name, description, is_active, created_by, updated_by, created_at, updated_at`, cfg.Table)

	now := time.Now().UTC()
	var rec models.Record
	if err := tx.GetContext(ctx, &rec, query, in.Name, in.Description, in.IsActive, userID, now); err != nil {
		if isUniqueViolation(err) {
			return nil, entity.ErrDuplicateName
		}
		return nil, fmt.Errorf("create site: %w", err)
	}

	if err := insertLinks(ctx, tx, rec.ID, customerCodes); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit site tx: %w", err)
	}
	return &rec, nil
}

// UpdateWithLinks applies a partial site update and replaces the customer
// links, both inside one transaction. Zero matched rows surface as
// sql.ErrNoRows.
func (r *SiteRepository) UpdateWithLinks(ctx context.Context, id int64, in entity.UpdateRecord, customerCodes []string, userID int64) (*models.Record, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin site tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rec, err := updateRecordTx(ctx, tx, r.Config().Table, id, in, userID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM customer_site_links WHERE site_id = $1`, id); err != nil {
		return nil, fmt.Errorf("clear site links: %w", err)
	}
	if err := insertLinks(ctx, tx, id, customerCodes); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit site tx: %w", err)
	}
	return rec, nil
}

func insertLinks(ctx context.Context, tx *sqlx.Tx, siteID int64, customerCodes []string) error {
	const query = `INSERT INTO customer_site_links (site_id, customer_code, created_at) VALUES ($1, $2, $3)`
	now := time.Now().UTC()
	for _, code := range customerCodes {
		if _, err := tx.ExecContext(ctx, query, siteID, code, now); err != nil {
			return fmt.Errorf("insert site link %q: %w", code, err)
		}
	}
	return nil
}

func updateRecordTx(ctx context.Context, tx *sqlx.Tx, table string, id int64, in entity.UpdateRecord, userID int64) (*models.Record, error) {
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
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d RETURNING id, name, description, is_active, created_by, updated_by, created_at, updated_at`,
		table, strings.Join(sets, ", "), len(args))

	var rec models.Record
	if err := tx.GetContext(ctx, &rec, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		if isUniqueViolation(err) {
			return nil, entity.ErrDuplicateName
		}
		return nil, fmt.Errorf("update site: %w", err)
	}
	return &rec, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
