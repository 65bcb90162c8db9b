package summarycache

import (
	"context"
	"time"

	"github.com/mx-space/summarizer/internal/models"
)

// FastTier is a key-value store with expiry. Get reports found=false for absent keys.
type FastTier interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// DurableTier is an append-only record store. Finders return (nil, nil) when nothing matches.
type DurableTier interface {
	FindByHash(ctx context.Context, digest string) (*models.SummaryRecord, error)
	FindRecent(ctx context.Context, category string, min, max int) (*models.SummaryRecord, error)
	SearchText(ctx context.Context, query string, min, max int) (*models.SummaryRecord, error)
	Insert(ctx context.Context, record *models.SummaryRecord) error
}

// Generator produces a summary for text.
type Generator interface {
	Generate(ctx context.Context, text string) (string, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, text string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}
