package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/summarizer/internal/middleware"
	"github.com/mx-space/summarizer/internal/modules/summary"
	"github.com/mx-space/summarizer/internal/modules/system/health"
	"github.com/mx-space/summarizer/internal/pkg/response"
)

const apiPrefix = "/api/v2"

func (a *App) registerRoutes(d deps) {
	r := a.router
	authMW := middleware.Auth(a.signer)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	appInfo := gin.H{
		"name":     "mx-space-summarizer",
		"version":  "1.0.0",
		"homepage": "https://github.com/mx-space/summarizer",
	}
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, appInfo)
	})

	api := r.Group(apiPrefix)
	api.Use(middleware.OptionalAuth(a.signer))
	if a.cfg.RateLimit.Enable {
		api.Use(middleware.RateLimit(d.redis.Raw(), middleware.RateLimitOptions{
			Max:    a.cfg.RateLimit.Max,
			Window: a.cfg.RateLimitWindow(),
			Logger: a.logger,
		}))
	}
	api.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, appInfo)
	})

	health.NewHandler(d.redis, d.mongo, d.state, a.cfg.LogDir()).RegisterRoutes(api, authMW)
	summary.NewHandler(a.engine, a.logger.Named("summary")).RegisterRoutes(api, authMW)
}
