package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/noticeboard-api/api/swagger"
	"github.com/noah-isme/noticeboard-api/internal/handler"
	"github.com/noah-isme/noticeboard-api/internal/middleware"
	"github.com/noah-isme/noticeboard-api/internal/service"
	"github.com/noah-isme/noticeboard-api/pkg/config"
	"github.com/noah-isme/noticeboard-api/pkg/database"
	appErrors "github.com/noah-isme/noticeboard-api/pkg/errors"
	"github.com/noah-isme/noticeboard-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/noticeboard-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/noticeboard-api/pkg/middleware/requestid"
	"github.com/noah-isme/noticeboard-api/pkg/response"
)

const maxMultipartMemory = 32 << 20

type routerDeps struct {
	notices *service.NoticeService
	tokens  *service.TokenService
	metrics *service.MetricsService
	ready   *database.ReadinessChecker
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = maxMultipartMemory
	r.Use(middleware.Recovery(logr))
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(deps.metrics))

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.ErrNotFound)
	})

	metricsHandler := handler.NewMetricsHandler(deps.metrics, deps.ready)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	notices := handler.NewNoticeHandler(deps.notices)
	auth := middleware.JWT(deps.tokens)

	group := r.Group(cfg.APIPrefix + "/notices")
	group.GET("", notices.List)
	group.GET("/top", notices.Top)
	group.GET("/:id", notices.Get)
	group.POST("", auth, notices.Create)
	group.PUT("/:id", auth, notices.Update)
	group.DELETE("/:id", auth, notices.Delete)

	return r
}
