package entity

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quantix-mfg/qc-admin-api/internal/middleware"
	"github.com/quantix-mfg/qc-admin-api/internal/models"
	appErrors "github.com/quantix-mfg/qc-admin-api/pkg/errors"
	"github.com/quantix-mfg/qc-admin-api/pkg/export"
	"github.com/quantix-mfg/qc-admin-api/pkg/response"
)

// Handler translates HTTP requests into service calls for one entity. It
// carries no business rules; derived resources wrap it and add their own
// endpoints.
type Handler struct {
	svc *Service
	csv *export.CSVExporter
	pdf *export.PDFExporter
}

// NewHandler constructs the generic entity handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, csv: export.NewCSVExporter(), pdf: export.NewPDFExporter()}
}

// Service exposes the wrapped service to derived handlers.
func (h *Handler) Service() *Service {
	return h.svc
}

// ParseID reads the :id path parameter as a positive integer.
func ParseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "id must be a positive integer")
	}
	return id, nil
}

// ParseOptions reads the common list query parameters with safe fallbacks.
// Malformed numbers fall back to defaults rather than failing the request;
// boolean filters accept only the literal strings "true" and "false".
func ParseOptions(c *gin.Context) models.QueryOptions {
	opts := models.QueryOptions{
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sortBy"),
		SortOrder: strings.ToUpper(c.Query("sortOrder")),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		opts.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		opts.Limit = limit
	}
	opts.IsActive = parseBool(c.Query("isActive"))
	return opts
}

func parseBool(raw string) *bool {
	switch raw {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}

// actorID resolves the authenticated user for write operations. A missing
// identity on a mutating endpoint is an authentication failure, not a 500.
func actorID(c *gin.Context) (int64, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return 0, appErrors.Clone(appErrors.ErrUnauthorized, "authenticated user required")
	}
	return user.ID, nil
}

// List godoc
// @Summary Paginated entity list
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param search query string false "Search term"
// @Param sortBy query string false "Sort column"
// @Param sortOrder query string false "ASC or DESC"
// @Param isActive query bool false "Active filter"
// @Success 200 {object} response.Envelope
func (h *Handler) List(c *gin.Context) {
	records, pagination, err := h.svc.List(c.Request.Context(), ParseOptions(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Get fetches a single record by id.
func (h *Handler) Get(c *gin.Context) {
	id, err := ParseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rec, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rec)
}

// Create inserts a new record on behalf of the session user.
func (h *Handler) Create(c *gin.Context) {
	userID, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	rec, err := h.svc.Create(c.Request.Context(), in, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rec)
}

// Update applies a partial update.
func (h *Handler) Update(c *gin.Context) {
	userID, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := ParseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var in UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	rec, err := h.svc.Update(c.Request.Context(), id, in, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rec)
}

// Delete hard-deletes a record.
func (h *Handler) Delete(c *gin.Context) {
	id, err := ParseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, h.svc.Config().Name+" deleted")
}

// ToggleStatus flips the soft-status flag.
func (h *Handler) ToggleStatus(c *gin.Context) {
	userID, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := ParseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	active, err := h.svc.ToggleStatus(c.Request.Context(), id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"id": id, "is_active": active})
}

// SearchByName handles GET /search/name?name=term.
func (h *Handler) SearchByName(c *gin.Context) {
	records, pagination, err := h.svc.SearchByName(c.Request.Context(), strings.TrimSpace(c.Query("name")), ParseOptions(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// SearchByPattern handles GET /search/pattern?pattern=term.
func (h *Handler) SearchByPattern(c *gin.Context) {
	records, pagination, err := h.svc.SearchByPattern(c.Request.Context(), strings.TrimSpace(c.Query("pattern")), ParseOptions(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// FilterByStatus handles GET /filter/status?status=active|inactive.
func (h *Handler) FilterByStatus(c *gin.Context) {
	records, pagination, err := h.svc.FilterByStatus(c.Request.Context(), c.Query("status"), ParseOptions(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Health is a public liveness probe for the entity table.
func (h *Handler) Health(c *gin.Context) {
	health, err := h.svc.Health(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if health.Status == models.HealthUnhealthy {
		status = http.StatusServiceUnavailable
	}
	response.JSON(c, status, health, nil)
}

// Statistics returns aggregate counters for the table.
func (h *Handler) Statistics(c *gin.Context) {
	stats, err := h.svc.Statistics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

// Export renders the filtered list as CSV or PDF.
func (h *Handler) Export(c *gin.Context) {
	dataset, err := h.svc.ExportDataset(c.Request.Context(), ParseOptions(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	name := strings.ReplaceAll(h.svc.Config().Name, " ", "_")
	switch c.DefaultQuery("format", "csv") {
	case "csv":
		payload, err := h.csv.Render(dataset)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+name+`.csv"`)
		c.Data(http.StatusOK, "text/csv", payload)
	case "pdf":
		payload, err := h.pdf.Render(dataset, h.svc.Config().Name+" export")
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+name+`.pdf"`)
		c.Data(http.StatusOK, "application/pdf", payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, `format must be "csv" or "pdf"`))
	}
}
