package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/quantix-mfg/qc-admin-api/internal/entity"
	"github.com/quantix-mfg/qc-admin-api/internal/handler"
	"github.com/quantix-mfg/qc-admin-api/internal/mail"
	"github.com/quantix-mfg/qc-admin-api/internal/middleware"
	"github.com/quantix-mfg/qc-admin-api/internal/repository"
	"github.com/quantix-mfg/qc-admin-api/internal/service"
	"github.com/quantix-mfg/qc-admin-api/internal/session"
	"github.com/quantix-mfg/qc-admin-api/pkg/config"
	"github.com/quantix-mfg/qc-admin-api/pkg/logger"
	corsmiddleware "github.com/quantix-mfg/qc-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/quantix-mfg/qc-admin-api/pkg/middleware/requestid"
)

// Options carries the shared infrastructure the router wires together.
// SecondaryDB and Mailer may be nil; the settings diagnostics report them
// as not configured.
type Options struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *sqlx.DB
	SecondaryDB *sqlx.DB
	Redis       *redis.Client
	Mailer      mail.Transport
}

// New builds the full HTTP surface: middleware chain, session pipeline, the
// generated entity resources and the specialized auth/user/site/setting
// resources.
func New(opts Options) (*gin.Engine, error) {
	cfg := opts.Config
	logr := opts.Logger

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, cfg.Log.SlowRequestAfter))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", readiness(opts.DB, opts.Redis))
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	sessions := session.NewStore(opts.Redis, cfg.Session)
	pipeline := entity.Pipeline{
		Authenticate: middleware.SessionAuth(sessions, cfg.Session.CookieName, logr),
		RequireRole:  middleware.RequireRole,
	}
	validate := validator.New()
	api := r.Group(cfg.APIPrefix)

	// Pure generic resources: a config entry is all it takes.
	generic := []entity.Config{
		{
			Name:             "sampling reason",
			Table:            "sampling_reasons",
			APIPath:          "/sampling-reasons",
			SearchableFields: []string{"name", "description"},
			DefaultLimit:     cfg.Entities.DefaultLimit,
			MaxLimit:         cfg.Entities.MaxLimit,
		},
		{
			Name:             "inspection station",
			Table:            "inspection_stations",
			APIPath:          "/inspection-stations",
			SearchableFields: []string{"name", "description"},
			DefaultLimit:     cfg.Entities.DefaultLimit,
			MaxLimit:         cfg.Entities.MaxLimit,
		},
	}
	for _, ec := range generic {
		if err := ec.Validate(); err != nil {
			return nil, err
		}
		repo := entity.NewRepository(opts.DB, ec)
		svc := entity.NewService(repo, ec, validate, logr)
		entity.RegisterRoutes(api, entity.NewHandler(svc), pipeline)
	}

	// Customer sites: generic lifecycle plus transactional customer links.
	siteCfg := entity.Config{
		Name:             "customer site",
		Table:            "customer_sites",
		APIPath:          "/customer-sites",
		SearchableFields: []string{"name", "description"},
		DefaultLimit:     cfg.Entities.DefaultLimit,
		MaxLimit:         cfg.Entities.MaxLimit,
	}
	if err := siteCfg.Validate(); err != nil {
		return nil, err
	}
	siteRepo := repository.NewSiteRepository(opts.DB, siteCfg)
	siteBase := entity.NewService(siteRepo, siteCfg, validate, logr)
	siteSvc := service.NewSiteService(siteBase, siteRepo, logr)
	handler.NewSiteHandler(entity.NewHandler(siteBase), siteSvc).Register(api, pipeline)

	// Settings: generic lifecycle plus uniqueness pre-check and diagnostics.
	settingCfg := entity.Config{
		Name:             "setting",
		Table:            "settings",
		APIPath:          "/settings",
		SearchableFields: []string{"name", "description"},
		DefaultLimit:     cfg.Entities.DefaultLimit,
		MaxLimit:         cfg.Entities.MaxLimit,
	}
	if err := settingCfg.Validate(); err != nil {
		return nil, err
	}
	settingRepo := entity.NewRepository(opts.DB, settingCfg)
	settingBase := entity.NewService(settingRepo, settingCfg, validate, logr)
	settingSvc := service.NewSettingService(settingBase, opts.Mailer, opts.SecondaryDB, logr)
	handler.NewSettingHandler(entity.NewHandler(settingBase), settingSvc).Register(api, pipeline)

	// Users: the generic delegate covers health, statistics, delete and the
	// status toggle; the account shape and credentials are specialized.
	userCfg := entity.Config{
		Name:             "user",
		Table:            "users",
		APIPath:          "/users",
		SearchableFields: []string{"name", "description"},
		DefaultLimit:     cfg.Entities.DefaultLimit,
		MaxLimit:         cfg.Entities.MaxLimit,
	}
	if err := userCfg.Validate(); err != nil {
		return nil, err
	}
	userRepo := repository.NewUserRepository(opts.DB, userCfg)
	userBase := entity.NewService(userRepo, userCfg, validate, logr)
	userSvc := service.NewUserService(userRepo, validate, logr)
	handler.NewUserHandler(entity.NewHandler(userBase), userSvc).Register(api, pipeline)

	authSvc := service.NewAuthService(userRepo, sessions, validate, logr)
	handler.NewAuthHandler(authSvc, sessions, cfg.Session).Register(api, pipeline.Authenticate)

	return r, nil
}

// readiness verifies the hard dependencies. Unlike /health it fails when the
// database or session store is unreachable.
func readiness(db *sqlx.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "database"})
			return
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "redis"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
