package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quantix-mfg/qc-admin-api/internal/entity"
	"github.com/quantix-mfg/qc-admin-api/internal/middleware"
	"github.com/quantix-mfg/qc-admin-api/internal/models"
	"github.com/quantix-mfg/qc-admin-api/internal/service"
	appErrors "github.com/quantix-mfg/qc-admin-api/pkg/errors"
	"github.com/quantix-mfg/qc-admin-api/pkg/response"
)

// UserHandler serves the account resource. Generic table endpoints (health,
// statistics, status toggle, delete, export) delegate to the embedded entity
// handler; everything touching credentials or the user shape is its own code.
type UserHandler struct {
	base  *entity.Handler
	users *service.UserService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(base *entity.Handler, users *service.UserService) *UserHandler {
	return &UserHandler{base: base, users: users}
}

// Register binds the user routes. Accounts are manager territory for reads
// and admin territory for everything else; the specialized handlers replace
// the generic list/get/create/update so the user shape comes through intact.
func (h *UserHandler) Register(rg *gin.RouterGroup, p entity.Pipeline) {
	g := rg.Group("/users")

	g.GET("/health", h.base.Health)

	authed := g.Group("", p.Authenticate)
	manager := authed.Group("", p.RequireRole(models.RoleManager))
	admin := authed.Group("", p.RequireRole(models.RoleAdmin))

	admin.GET("/statistics", h.base.Statistics)
	admin.GET("/export", h.base.Export)

	manager.GET("", h.List)
	admin.POST("", h.Create)

	manager.GET("/:id", h.Get)
	admin.PUT("/:id", h.Update)
	admin.DELETE("/:id", h.base.Delete)
	admin.PATCH("/:id/status", h.base.ToggleStatus)
	authed.PUT("/:id/password", h.ChangePassword)
}

// List godoc
// @Summary Paginated account list
// @Tags Users
// @Produce json
// @Param role query string false "Role filter"
// @Param isActive query bool false "Active filter"
// @Param search query string false "Matches username, email or name"
// @Success 200 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	filter := models.UserFilter{
		Search:  strings.TrimSpace(c.Query("search")),
		Options: entity.ParseOptions(c),
	}
	if role := models.Role(c.Query("role")); role != "" {
		if !role.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown role"))
			return
		}
		filter.Role = &role
	}
	filter.IsActive = filter.Options.IsActive

	users, pagination, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

// Get fetches one account by id.
func (h *UserHandler) Get(c *gin.Context) {
	id, err := entity.ParseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

// Create registers an account on behalf of the session user.
func (h *UserHandler) Create(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	user, err := h.users.Create(c.Request.Context(), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Update applies a partial account update.
func (h *UserHandler) Update(c *gin.Context) {
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
	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	user, err := h.users.Update(c.Request.Context(), id, req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

// ChangePassword replaces an account credential. Permission rules (admin or
// self with the old password) live in the service.
func (h *UserHandler) ChangePassword(c *gin.Context) {
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
	var req service.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.users.ChangePassword(c.Request.Context(), id, req, actor); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "password updated")
}
