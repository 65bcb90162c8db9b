package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/summarizer/internal/pkg/nativelog"
	"github.com/mx-space/summarizer/internal/pkg/response"
)

const pingTimeout = 2 * time.Second

// Pinger is a backing store that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StateReporter exposes the generator circuit breaker state.
type StateReporter interface {
	State() string
}

type Handler struct {
	redis     Pinger
	mongo     Pinger
	generator StateReporter
	logDir    string
	started   time.Time
	now       func() time.Time
}

func NewHandler(redis, mongo Pinger, generator StateReporter, logDir string) *Handler {
	return &Handler{
		redis:     redis,
		mongo:     mongo,
		generator: generator,
		logDir:    logDir,
		started:   time.Now(),
		now:       time.Now,
	}
}

type logItem struct {
	Size     string `json:"size"`
	Filename string `json:"filename"`
	Index    int    `json:"index"`
	Created  int64  `json:"created"`
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": "pong"})
	})
	rg.GET("/health", h.health)

	logGroup := rg.Group("/health/log", authMW)
	logGroup.GET("/list", h.listLogs)
	logGroup.GET("", h.readLog)
	logGroup.DELETE("", h.deleteLog)
}

func (h *Handler) health(c *gin.Context) {
	redisOK := ping(c.Request.Context(), h.redis)
	mongoOK := ping(c.Request.Context(), h.mongo)

	status := "ok"
	code := http.StatusOK
	if !redisOK || !mongoOK {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	generator := "unknown"
	if h.generator != nil {
		generator = h.generator.State()
	}

	c.JSON(code, gin.H{
		"status":    status,
		"redis":     redisOK,
		"database":  mongoOK,
		"generator": generator,
		"uptime":    humanizeDuration(h.now().Sub(h.started)),
	})
}

func ping(ctx context.Context, p Pinger) bool {
	if p == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return p.Ping(ctx) == nil
}

func (h *Handler) listLogs(c *gin.Context) {
	entries, err := os.ReadDir(h.logDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			response.OK(c, []logItem{})
			return
		}
		response.InternalError(c, err)
		return
	}

	items := make([]logItem, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !nativelog.IsLogFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		items = append(items, logItem{
			Size:     formatByteSize(info.Size()),
			Filename: entry.Name(),
			Created:  info.ModTime().UnixMilli(),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Created > items[j].Created
	})
	for i := range items {
		items[i].Index = i
	}
	response.OK(c, items)
}

func (h *Handler) readLog(c *gin.Context) {
	filename, ok := h.requestedLog(c)
	if !ok {
		return
	}
	data, err := os.ReadFile(filepath.Join(h.logDir, filename))
	if err != nil {
		response.NotFound(c)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
}

func (h *Handler) deleteLog(c *gin.Context) {
	filename, ok := h.requestedLog(c)
	if !ok {
		return
	}

	target := filepath.Join(h.logDir, filename)
	// today's file is still being written; truncate instead of removing
	if filename == nativelog.TodayFilename(h.now()) {
		if err := os.WriteFile(target, nil, 0o644); err != nil {
			response.InternalError(c, err)
			return
		}
	} else if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		response.InternalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) requestedLog(c *gin.Context) (string, bool) {
	filename := filepath.Base(strings.TrimSpace(c.Query("filename")))
	if filename == "." || filename == string(filepath.Separator) || !nativelog.IsLogFile(filename) {
		response.UnprocessableEntity(c, "filename must name a log file")
		return "", false
	}
	return filename, true
}

func formatByteSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.2f KB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}

func humanizeDuration(d time.Duration) string {
	if d < time.Minute {
		return d.Truncate(time.Second).String()
	}
	if d < time.Hour {
		return d.Truncate(time.Minute).String()
	}
	if d < 24*time.Hour {
		return d.Truncate(time.Hour).String()
	}
	return d.Truncate(24 * time.Hour).String()
}
