package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quantix-mfg/qc-admin-api/internal/middleware"
	"github.com/quantix-mfg/qc-admin-api/internal/service"
	"github.com/quantix-mfg/qc-admin-api/pkg/config"
	appErrors "github.com/quantix-mfg/qc-admin-api/pkg/errors"
	"github.com/quantix-mfg/qc-admin-api/pkg/response"
)

type sessionTTL interface {
	TTL(remember bool) int
}

// AuthHandler exposes login, logout and current-user endpoints. The cookie
// it sets carries only the opaque session id; identity stays server-side.
type AuthHandler struct {
	auth     *service.AuthService
	sessions sessionTTL
	cfg      config.SessionConfig
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth *service.AuthService, sessions sessionTTL, cfg config.SessionConfig) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, cfg: cfg}
}

// Register binds the auth routes. Login is public; logout and me require a
// live session.
func (h *AuthHandler) Register(rg *gin.RouterGroup, authenticate gin.HandlerFunc) {
	g := rg.Group("/auth")
	g.POST("/login", h.Login)
	g.POST("/logout", authenticate, h.Logout)
	g.GET("/me", authenticate, h.Me)
}

// Login godoc
// @Summary Authenticate and open a session
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body service.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	user, sessionID, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, sessionID, h.sessions.TTL(req.Remember), "/", "", h.cfg.Secure, true)
	response.OK(c, user)
}

// Logout destroys the caller's session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, _ := c.Cookie(h.cfg.CookieName)
	if err := h.auth.Logout(c.Request.Context(), sessionID); err != nil {
		response.Error(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, "", -1, "/", "", h.cfg.Secure, true)
	response.Message(c, "logged out")
}

// Me returns the session user attached by the authentication middleware.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.OK(c, user)
}
