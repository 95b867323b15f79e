package entity

import "fmt"

// Config is the immutable descriptor a resource is generated from. One value
// is built per entity at process start and shared read-only by the
// repository, service, handler and route factory.
type Config struct {
	// Name is the singular, human-readable entity name used in messages.
	Name string
	// Table is the backing table. Trusted: configs are declared in code,
	// never built from request input.
	Table string
	// APIPath is the route group the resource mounts under, e.g. "/settings".
	APIPath string
	// SearchableFields lists the columns matched by the list search term.
	SearchableFields []string
	DefaultLimit     int
	MaxLimit         int
}

// Validate rejects descriptors that would generate a broken resource.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("entity config: name is required")
	}
	if c.Table == "" {
		return fmt.Errorf("entity config %q: table is required", c.Name)
	}
	if c.APIPath == "" {
		return fmt.Errorf("entity config %q: api path is required", c.Name)
	}
	if c.DefaultLimit <= 0 || c.MaxLimit <= 0 {
		return fmt.Errorf("entity config %q: limits must be positive", c.Name)
	}
	if c.DefaultLimit > c.MaxLimit {
		return fmt.Errorf("entity config %q: default limit %d exceeds max %d", c.Name, c.DefaultLimit, c.MaxLimit)
	}
	for _, field := range c.SearchableFields {
		if !IsSortColumn(field) {
			return fmt.Errorf("entity config %q: field %q is not a base column", c.Name, field)
		}
	}
	return nil
}

// sortColumns is the fixed allow-list for caller-influenced identifiers in
// ORDER BY and search clauses. Anything else silently falls back to name.
var sortColumns = map[string]struct{}{
	"id":          {},
	"name":        {},
	"description": {},
	"is_active":   {},
	"created_at":  {},
	"updated_at":  {},
	"created_by":  {},
	"updated_by":  {},
}

// IsSortColumn reports whether col is part of the base-column allow-list.
func IsSortColumn(col string) bool {
	_, ok := sortColumns[col]
	return ok
}
