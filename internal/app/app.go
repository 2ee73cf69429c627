package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kalpit-muncho/dashboard-core/internal/config"
	"github.com/kalpit-muncho/dashboard-core/internal/database"
	"github.com/kalpit-muncho/dashboard-core/internal/middleware"
	pkgcron "github.com/kalpit-muncho/dashboard-core/internal/pkg/cron"
	pkgjwt "github.com/kalpit-muncho/dashboard-core/internal/pkg/jwt"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/muncho"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/notify"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/optimistic"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/priority"
	pkgredis "github.com/kalpit-muncho/dashboard-core/internal/pkg/redis"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/status"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/uploader"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	logger *zap.Logger
	cancel context.CancelFunc
	sched  *pkgcron.Scheduler
}

// New initializes the application: database, redis, the upstream client, the
// mutation plumbing, then routes and background jobs.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	if secret := strings.TrimSpace(cfg.JWTSecret); secret != "" {
		pkgjwt.SetSecret(secret)
	} else {
		logger.Warn("jwt_secret is empty, using built-in default secret")
	}

	db, err := database.Connect(cfg.ResolveDSN(), cfg.IsDev())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	sink := muncho.NewGormSink(db)
	api, err := muncho.New(cfg.Upstream.BaseURL, cfg.Upstream.Token, logger.Named("upstream"),
		muncho.WithSink(sink),
		muncho.WithMaxRetries(cfg.Upstream.MaxRetries),
	)
	if err != nil {
		return nil, fmt.Errorf("upstream: %w", err)
	}

	hub := notify.NewHub(rc, logger.Named("notify"))
	mut := optimistic.New(hub)
	engine := status.NewEngine(mut)
	tracker := priority.NewTracker()

	var up uploader.Uploader
	if cfg.Storage.Bucket != "" {
		up = uploader.NewS3(uploader.Options{
			Bucket:          cfg.Storage.Bucket,
			Region:          cfg.Storage.Region,
			Endpoint:        cfg.Storage.Endpoint,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
			KeyTemplate:     cfg.Storage.KeyTemplate,
			AllowedFormats:  cfg.Storage.AllowedFormats,
			MaxSizeMB:       cfg.Storage.MaxSizeMB,
		})
	} else {
		logger.Warn("storage.bucket is empty, image uploads are disabled")
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(corsConfig(cfg)))

	ctx, cancel := context.WithCancel(context.Background())

	sched := pkgcron.New()

	app := &App{cfg: cfg, router: router, db: db, logger: logger, cancel: cancel, sched: sched}
	deps := &moduleDeps{
		db:      db,
		rc:      rc,
		api:     api,
		sink:    sink,
		mut:     mut,
		engine:  engine,
		tracker: tracker,
		up:      up,
		logger:  logger,
	}
	app.registerRoutes(deps)
	app.registerCronJobs(deps)
	go sched.Start(ctx)

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background goroutines.
func (a *App) Shutdown() { a.cancel() }

func corsConfig(cfg *config.AppConfig) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "x-idempotence"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		patterns := cfg.AllowedOrigins
		corsCfg.AllowOriginFunc = func(origin string) bool {
			host := extractOriginHost(origin)
			for _, pattern := range patterns {
				if matchOriginPattern(pattern, host) {
					return true
				}
			}
			return false
		}
	} else {
		corsCfg.AllowOriginFunc = func(string) bool { return true }
	}
	return corsCfg
}
