package summary

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/summarizer/internal/modules/processing/summarycache"
	"github.com/mx-space/summarizer/internal/pkg/response"
	"go.uber.org/zap"
)

// Resolver is the part of the cache engine the handler needs.
type Resolver interface {
	ResolveDetailed(ctx context.Context, text string) summarycache.Result
	Stats() summarycache.Stats
}

type Handler struct {
	engine Resolver
	logger *zap.Logger
}

func NewHandler(engine Resolver, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{engine: engine, logger: logger}
}

type summarizeDTO struct {
	Text string `json:"text" binding:"required"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
	Source  string `json:"source"`
	Key     string `json:"key"`
}

type statsResponse struct {
	summarycache.Stats
	HitRatio float64 `json:"hit_ratio"`
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/summarize", authMW)
	g.POST("", h.summarize)
	g.GET("/stats", h.stats)
}

func (h *Handler) summarize(c *gin.Context) {
	var dto summarizeDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "request body must be JSON with a text field")
		return
	}

	text := Sanitize(dto.Text)
	if err := Validate(dto.Text, text); err != nil {
		if errors.Is(err, ErrInjection) {
			h.logger.Warn("rejected summarize input", zap.String("ip", c.ClientIP()))
		}
		response.UnprocessableEntity(c, err.Error())
		return
	}

	res := h.engine.ResolveDetailed(c.Request.Context(), text)
	response.OK(c, summarizeResponse{
		Summary: res.Summary,
		Source:  string(res.Source),
		Key:     res.Key,
	})
}

func (h *Handler) stats(c *gin.Context) {
	stats := h.engine.Stats()
	response.OK(c, statsResponse{Stats: stats, HitRatio: stats.HitRatio()})
}
