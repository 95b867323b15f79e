package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quantix-mfg/qc-admin-api/internal/entity"
	"github.com/quantix-mfg/qc-admin-api/internal/middleware"
	"github.com/quantix-mfg/qc-admin-api/internal/models"
	"github.com/quantix-mfg/qc-admin-api/internal/service"
	appErrors "github.com/quantix-mfg/qc-admin-api/pkg/errors"
	"github.com/quantix-mfg/qc-admin-api/pkg/response"
)

// SettingHandler serves the system-settings resource plus the connectivity
// diagnostics that live under it.
type SettingHandler struct {
	base     *entity.Handler
	settings *service.SettingService
}

// NewSettingHandler constructs a SettingHandler.
func NewSettingHandler(base *entity.Handler, settings *service.SettingService) *SettingHandler {
	return &SettingHandler{base: base, settings: settings}
}

// Register binds the setting routes. Settings are admin-only for writes and
// diagnostics; the create endpoint is swapped for the uniqueness-checking one.
func (h *SettingHandler) Register(rg *gin.RouterGroup, p entity.Pipeline) {
	g := rg.Group(h.base.Service().Config().APIPath)

	g.GET("/health", h.base.Health)

	authed := g.Group("", p.Authenticate)
	user := authed.Group("", p.RequireRole(models.RoleUser))
	admin := authed.Group("", p.RequireRole(models.RoleAdmin))

	admin.GET("/statistics", h.base.Statistics)
	admin.GET("/export", h.base.Export)
	user.GET("/search/name", h.base.SearchByName)
	user.GET("/search/pattern", h.base.SearchByPattern)
	user.GET("/filter/status", h.base.FilterByStatus)
	user.GET("/by-name/:name", h.GetByName)
	admin.GET("/diagnostics/smtp", h.VerifySMTP)
	admin.GET("/diagnostics/database", h.PingSecondaryDB)

	user.GET("", h.base.List)
	admin.POST("", h.Create)

	user.GET("/:id", h.base.Get)
	admin.PUT("/:id", h.base.Update)
	admin.DELETE("/:id", h.base.Delete)
	admin.PATCH("/:id/status", h.base.ToggleStatus)
}

// GetByName resolves a setting by its exact name.
func (h *SettingHandler) GetByName(c *gin.Context) {
	setting, err := h.settings.GetByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, setting)
}

// Create inserts a setting after the name-uniqueness pre-check.
func (h *SettingHandler) Create(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var in entity.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	setting, err := h.settings.Create(c.Request.Context(), in, actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, setting)
}

// VerifySMTP godoc
// @Summary Check SMTP relay reachability
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings/diagnostics/smtp [get]
func (h *SettingHandler) VerifySMTP(c *gin.Context) {
	response.OK(c, h.settings.VerifySMTP(c.Request.Context()))
}

// PingSecondaryDB checks reachability of the reporting replica.
func (h *SettingHandler) PingSecondaryDB(c *gin.Context) {
	response.OK(c, h.settings.PingSecondaryDB(c.Request.Context()))
}
