package app

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kalpit-muncho/dashboard-core/internal/middleware"
	"github.com/kalpit-muncho/dashboard-core/internal/models"
	"github.com/kalpit-muncho/dashboard-core/internal/modules/addon"
	"github.com/kalpit-muncho/dashboard-core/internal/modules/appearance"
	"github.com/kalpit-muncho/dashboard-core/internal/modules/banner"
	"github.com/kalpit-muncho/dashboard-core/internal/modules/category"
	"github.com/kalpit-muncho/dashboard-core/internal/modules/dish"
	"github.com/kalpit-muncho/dashboard-core/internal/modules/menu"
	"github.com/kalpit-muncho/dashboard-core/internal/modules/staff"
	"github.com/kalpit-muncho/dashboard-core/internal/modules/table"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/muncho"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/optimistic"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/pagination"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/priority"
	pkgredis "github.com/kalpit-muncho/dashboard-core/internal/pkg/redis"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/response"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/status"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/uploader"
)

// moduleDeps bundles the shared collaborators handed to every module, so the
// mutation plumbing is explicit instead of ambient.
type moduleDeps struct {
	db      *gorm.DB
	rc      *pkgredis.Client
	api     *muncho.Client
	sink    *muncho.GormSink
	mut     *optimistic.Mutator
	engine  *status.Engine
	tracker *priority.Tracker
	up      uploader.Uploader
	logger  *zap.Logger

	bannerSvc *banner.Service
}

func (a *App) registerRoutes(deps *moduleDeps) {
	r := a.router
	authMW := middleware.Auth()

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "")
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	r.Use(middleware.RateLimit(deps.rc.Raw()))
	r.Use(middleware.Idempotence(deps.rc.Raw()))

	api := r.Group("/api/v1")

	api.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"ok": true})
	})

	catSvc := category.NewService(deps.db, deps.api, deps.mut, deps.tracker, deps.engine)
	menuSvc := menu.NewService(deps.db, deps.api, deps.mut, deps.tracker, deps.engine, catSvc)
	dishSvc := dish.NewService(deps.db, deps.api, deps.mut, deps.tracker, deps.engine, deps.up)
	addonSvc := addon.NewService(deps.db, deps.api, deps.mut, deps.tracker, deps.engine)
	bannerSvc := banner.NewService(deps.db, deps.api, deps.mut, deps.tracker, deps.engine, deps.up, deps.logger.Named("banner"))
	appearSvc := appearance.NewService(deps.db, deps.api, deps.mut, deps.tracker, deps.up)
	staffSvc := staff.NewService(deps.db)
	tableSvc := table.NewService(deps.db, deps.api, deps.mut, deps.tracker, deps.engine)

	deps.bannerSvc = bannerSvc

	menu.NewHandler(menuSvc).RegisterRoutes(api, authMW)
	category.NewHandler(catSvc).RegisterRoutes(api, authMW)
	dish.NewHandler(dishSvc).RegisterRoutes(api, authMW)
	addon.NewHandler(addonSvc).RegisterRoutes(api, authMW)
	banner.NewHandler(bannerSvc).RegisterRoutes(api, authMW)
	appearance.NewHandler(appearSvc).RegisterRoutes(api, authMW)
	staff.NewHandler(staffSvc).RegisterRoutes(api, authMW)
	table.NewHandler(tableSvc).RegisterRoutes(api, authMW)

	a.registerJobRoutes(api, authMW)
	registerTelemetryRoutes(api, authMW, deps.db)
}

// registerTelemetryRoutes lets owners browse the recorded upstream calls, most
// recent first.
func registerTelemetryRoutes(api *gin.RouterGroup, authMW gin.HandlerFunc, db *gorm.DB) {
	g := api.Group("/telemetry", authMW, middleware.RequireRole(string(models.RoleOwner)))

	g.GET("/upstream", func(c *gin.Context) {
		var logs []models.UpstreamLogModel
		page, err := pagination.Paginate(
			db.Model(&models.UpstreamLogModel{}).Order("created_at DESC"),
			pagination.FromContext(c), &logs,
		)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.Paged(c, logs, page)
	})
}

// registerJobRoutes exposes the scheduler for inspection and manual runs.
func (a *App) registerJobRoutes(api *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := api.Group("/jobs", authMW)

	g.GET("", func(c *gin.Context) {
		response.OK(c, a.sched.List())
	})
	g.POST("/:name/run", func(c *gin.Context) {
		if err := a.sched.Run(c.Request.Context(), c.Param("name")); err != nil {
			response.NotFound(c, err.Error())
			return
		}
		response.OKMsg(c, "job triggered")
	})
}
