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

// SiteHandler serves the customer-site resource. It keeps the full generic
// route table and swaps in link-aware get/create/update endpoints.
type SiteHandler struct {
	base  *entity.Handler
	sites *service.SiteService
}

// NewSiteHandler constructs a SiteHandler.
func NewSiteHandler(base *entity.Handler, sites *service.SiteService) *SiteHandler {
	return &SiteHandler{base: base, sites: sites}
}

// Register binds the site routes with the same verb/role table as the generic
// resources. Literal paths stay ahead of the :id matcher.
func (h *SiteHandler) Register(rg *gin.RouterGroup, p entity.Pipeline) {
	g := rg.Group(h.base.Service().Config().APIPath)

	g.GET("/health", h.base.Health)

	authed := g.Group("", p.Authenticate)
	user := authed.Group("", p.RequireRole(models.RoleUser))
	manager := authed.Group("", p.RequireRole(models.RoleManager))

	manager.GET("/statistics", h.base.Statistics)
	manager.GET("/export", h.base.Export)
	user.GET("/search/name", h.base.SearchByName)
	user.GET("/search/pattern", h.base.SearchByPattern)
	user.GET("/filter/status", h.base.FilterByStatus)

	user.GET("", h.base.List)
	manager.POST("", h.Create)

	user.GET("/:id", h.Get)
	manager.PUT("/:id", h.Update)
	manager.DELETE("/:id", h.base.Delete)
	manager.PATCH("/:id/status", h.base.ToggleStatus)
}

// Get returns the site together with its customer links.
func (h *SiteHandler) Get(c *gin.Context) {
	id, err := entity.ParseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	site, err := h.sites.GetWithLinks(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, site)
}

// Create godoc
// @Summary Create a customer site with its customer links
// @Tags CustomerSites
// @Accept json
// @Produce json
// @Param payload body service.CreateSiteRequest true "Site payload"
// @Success 201 {object} response.Envelope
// @Router /customer-sites [post]
func (h *SiteHandler) Create(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	site, err := h.sites.CreateWithLinks(c.Request.Context(), req, actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, site)
}

// Update applies a partial site update, replacing links when the payload
// carries a customer_codes array.
func (h *SiteHandler) Update(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := entity.ParseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	site, err := h.sites.UpdateWithLinks(c.Request.Context(), id, req, actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, site)
}
