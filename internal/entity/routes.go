package entity

import (
	"github.com/gin-gonic/gin"

	"github.com/quantix-mfg/qc-admin-api/internal/models"
)

// Pipeline bundles the authorization middleware a generated resource is
// threaded through: session authentication plus a role-check factory.
type Pipeline struct {
	Authenticate gin.HandlerFunc
	RequireRole  func(models.Role) gin.HandlerFunc
}

// RegisterRoutes binds the handler to the standard verb/path/role table.
// Literal paths (health, statistics, search, filter, export) are registered
// before the parameterized :id routes so the id matcher cannot capture them.
// Health stays outside the session pipeline for external monitoring probes.
func RegisterRoutes(rg *gin.RouterGroup, h *Handler, p Pipeline) {
	g := rg.Group(h.svc.Config().APIPath)

	g.GET("/health", h.Health)

	authed := g.Group("", p.Authenticate)
	user := authed.Group("", p.RequireRole(models.RoleUser))
	manager := authed.Group("", p.RequireRole(models.RoleManager))

	manager.GET("/statistics", h.Statistics)
	manager.GET("/export", h.Export)
	user.GET("/search/name", h.SearchByName)
	user.GET("/search/pattern", h.SearchByPattern)
	user.GET("/filter/status", h.FilterByStatus)

	user.GET("", h.List)
	manager.POST("", h.Create)

	user.GET("/:id", h.Get)
	manager.PUT("/:id", h.Update)
	manager.DELETE("/:id", h.Delete)
	manager.PATCH("/:id/status", h.ToggleStatus)
}
