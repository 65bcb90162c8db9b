package app

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/summarizer/internal/config"
	"go.uber.org/zap"
)

func applyRuntimeSettings(cfg *config.AppConfig, logger *zap.Logger) {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		logger.Warn("jwt_secret is empty, summarize endpoints are public")
	}
	if !cfg.RateLimit.Enable {
		logger.Warn("rate limiting is disabled")
	}
	logger.Info("summary cache configured",
		zap.Duration("ttl", cfg.CacheTTL()),
		zap.String("key_prefix", cfg.Cache.KeyPrefix),
		zap.Bool("coalesce", cfg.Cache.Coalesce),
	)
}

func configureGin(cfg *config.AppConfig) {
	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
		gin.DebugPrintRouteFunc = func(string, string, string, int) {}
		return
	}
	gin.SetMode(gin.ReleaseMode)
}
