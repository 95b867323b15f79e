package models

import "time"

// Record is the row shape shared by every serial-ID entity table: a unique
// name, an optional description, a soft-status flag and audit columns.
// CreatedBy/UpdatedBy are weak references into the users table; 0 means the
// system actor.
type Record struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedBy   int64     `db:"created_by" json:"created_by"`
	UpdatedBy   int64     `db:"updated_by" json:"updated_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SortOrder values accepted by list endpoints.
const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// QueryOptions captures the list/search parameters common to every entity.
// Invalid values are normalised, never rejected: unknown sort columns fall
// back to name, out-of-range limits are clamped.
type QueryOptions struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
	IsActive  *bool
}

// Pagination is the metadata block returned alongside every list.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes the derived total_pages field.
func NewPagination(page, limit, total int) *Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return &Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// Health status classification for an entity table.
const (
	HealthHealthy   = "healthy"
	HealthWarning   = "warning"
	HealthUnhealthy = "unhealthy"
)

// EntityHealth reports store reachability and record counts for one table.
type EntityHealth struct {
	Entity      string     `json:"entity"`
	Status      string     `json:"status"`
	Total       int        `json:"total"`
	Active      int        `json:"active"`
	Inactive    int        `json:"inactive"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	CheckedAt   time.Time  `json:"checked_at"`
}

// EntityStats aggregates table-level counters for the statistics endpoint.
type EntityStats struct {
	Entity             string `json:"entity"`
	Total              int    `db:"total" json:"total"`
	Active             int    `db:"active" json:"active"`
	Inactive           int    `db:"inactive" json:"inactive"`
	CreatedLast30Days  int    `db:"created_last_30_days" json:"created_last_30_days"`
	UpdatedLast30Days  int    `db:"updated_last_30_days" json:"updated_last_30_days"`
	WithDescription    int    `db:"with_description" json:"with_description"`
	WithoutDescription int    `db:"without_description" json:"without_description"`
}
