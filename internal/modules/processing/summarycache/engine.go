package summarycache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mx-space/summarizer/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTTL is the fast-tier expiry for every write.
	DefaultTTL = 24 * time.Hour
	// DefaultKeyPrefix namespaces fast-tier keys.
	DefaultKeyPrefix = "summary:"

	fallbackRunes = 100
	keywordWords  = 5
)

// Result is a resolved summary with its provenance.
type Result struct {
	Summary string `json:"summary"`
	Source  Source `json:"source"`
	Key     string `json:"key"`
}

// Engine resolves summaries through the fast tier, the durable tier and finally the generator.
type Engine struct {
	fast     FastTier
	durable  DurableTier
	gen      Generator
	ttl      time.Duration
	prefix   string
	coalesce bool
	logger   *zap.Logger
	tracer   trace.Tracer
	now      func() time.Time

	group singleflight.Group
	stats *counters
}

type Option func(*Engine)

func WithTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		if ttl > 0 {
			e.ttl = ttl
		}
	}
}

// WithKeyPrefix sets the fast-tier namespace. An empty prefix is allowed.
func WithKeyPrefix(prefix string) Option {
	return func(e *Engine) { e.prefix = prefix }
}

// WithCoalescing shares one lookup between concurrent callers with the same key.
func WithCoalescing(enabled bool) Option {
	return func(e *Engine) { e.coalesce = enabled }
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New builds an Engine. All three collaborators are required.
func New(fast FastTier, durable DurableTier, gen Generator, opts ...Option) (*Engine, error) {
	if fast == nil || durable == nil || gen == nil {
		return nil, errors.New("summarycache: fast tier, durable tier and generator are required")
	}
	e := &Engine{
		fast:     fast,
		durable:  durable,
		gen:      gen,
		ttl:      DefaultTTL,
		prefix:   DefaultKeyPrefix,
		coalesce: true,
		logger:   zap.NewNop(),
		tracer:   otel.Tracer("github.com/mx-space/summarizer/summarycache"),
		now:      time.Now,
		stats:    newCounters(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Resolve returns a summary for text. It never fails; the worst case is the fallback string.
func (e *Engine) Resolve(ctx context.Context, text string) string {
	return e.ResolveDetailed(ctx, text).Summary
}

// ResolveDetailed is Resolve with the answering step and cache key.
func (e *Engine) ResolveDetailed(ctx context.Context, text string) Result {
	fp := NewFingerprint(text)

	ctx, span := e.tracer.Start(ctx, "summarycache.resolve",
		trace.WithAttributes(
			attribute.String("cache.category", string(fp.Category)),
			attribute.Int("cache.word_count", fp.WordCount),
		),
	)
	defer span.End()

	var res Result
	if e.coalesce {
		res = e.resolveShared(ctx, text, fp)
	} else {
		res = e.resolve(ctx, text, fp)
		e.stats.record(res.Source)
	}

	span.SetAttributes(attribute.String("cache.source", string(res.Source)))
	if res.Source == SourceFallback {
		span.SetStatus(codes.Error, "generation failed")
	} else {
		span.SetStatus(codes.Ok, string(res.Source))
	}
	return res
}

// resolveShared runs one lookup per key for all concurrent callers. The lookup
// ignores the first caller's cancellation; each caller stops waiting when its
// own context ends. Fallbacks are rebuilt from each caller's own text.
func (e *Engine) resolveShared(ctx context.Context, text string, fp Fingerprint) Result {
	key := fp.Key().String()
	var leader bool
	ch := e.group.DoChan(key, func() (interface{}, error) {
		leader = true
		return e.resolve(context.WithoutCancel(ctx), text, fp), nil
	})

	select {
	case <-ctx.Done():
		e.logger.Warn("caller gave up waiting for summary", zap.String("key", key), zap.Error(ctx.Err()))
		e.stats.record(SourceFallback)
		return Result{Summary: Fallback(text), Source: SourceFallback, Key: key}
	case out := <-ch:
		res := out.Val.(Result)
		switch {
		case res.Source == SourceFallback:
			res.Summary = Fallback(text)
			e.stats.record(SourceFallback)
		case leader:
			e.stats.record(res.Source)
		default:
			e.stats.shared.Add(1)
		}
		return res
	}
}

// Stats returns a snapshot of the per-source counters.
func (e *Engine) Stats() Stats {
	return e.stats.snapshot()
}

func (e *Engine) resolve(ctx context.Context, text string, fp Fingerprint) Result {
	key := fp.Key().String()
	log := e.logger.With(
		zap.String("key", key),
		zap.String("category", string(fp.Category)),
		zap.Int("word_count", fp.WordCount),
	)
	done := func(summary string, src Source) Result {
		log.Debug("summary resolved", zap.String("source", string(src)))
		return Result{Summary: summary, Source: src, Key: key}
	}

	if summary, ok := e.fastExact(ctx, log, key); ok {
		return done(summary, SourceFastExact)
	}

	if summary, ok := e.scanFastTier(ctx, log, fp); ok {
		e.writeBack(ctx, log, key, summary)
		return done(summary, SourceFastSimilar)
	}

	if record := e.durableExact(ctx, log, fp); record != nil {
		e.writeBack(ctx, log, key, record.Summary)
		return done(record.Summary, SourceDurableExact)
	}

	if record, src := e.searchDurableTier(ctx, log, fp); record != nil {
		e.writeBack(ctx, log, key, record.Summary)
		e.insert(ctx, log, e.newRecord(text, fp, record.Summary))
		return done(record.Summary, src)
	}

	summary, err := e.gen.Generate(ctx, text)
	if err == nil && strings.TrimSpace(summary) == "" {
		err = errors.New("generator returned an empty summary")
	}
	if err != nil {
		log.Warn("summary generation failed, serving fallback", zap.Error(err))
		return done(Fallback(text), SourceFallback)
	}

	e.writeBack(ctx, log, key, summary)
	e.insert(ctx, log, e.newRecord(text, fp, summary))
	return done(summary, SourceGenerated)
}

func (e *Engine) fastExact(ctx context.Context, log *zap.Logger, key string) (string, bool) {
	summary, found, err := e.fast.Get(ctx, e.prefix+key)
	if err != nil {
		e.degraded(log, "fast tier lookup failed", err)
		return "", false
	}
	return summary, found
}

func (e *Engine) durableExact(ctx context.Context, log *zap.Logger, fp Fingerprint) *models.SummaryRecord {
	record, err := e.durable.FindByHash(ctx, fp.Digest)
	if err != nil {
		e.degraded(log, "durable tier exact lookup failed", err)
		return nil
	}
	return record
}

func (e *Engine) writeBack(ctx context.Context, log *zap.Logger, key, summary string) {
	if err := e.fast.Set(ctx, e.prefix+key, summary, e.ttl); err != nil {
		e.degraded(log, "fast tier write failed", err)
	}
}

func (e *Engine) insert(ctx context.Context, log *zap.Logger, record *models.SummaryRecord) {
	err := e.durable.Insert(ctx, record)
	if err == nil {
		return
	}
	if isDuplicate(err) {
		log.Debug("summary record already stored", zap.String("hash", record.Hash))
		return
	}
	e.degraded(log, "durable tier insert failed", err)
}

func (e *Engine) newRecord(text string, fp Fingerprint, summary string) *models.SummaryRecord {
	return &models.SummaryRecord{
		Hash:           Digest(text),
		NormalizedHash: fp.Digest,
		OriginalText:   text,
		NormalizedText: fp.Normalized,
		Category:       string(fp.Category),
		WordCount:      fp.WordCount,
		Summary:        summary,
		CreatedAt:      e.now().UTC(),
	}
}

func (e *Engine) degraded(log *zap.Logger, msg string, err error) {
	e.stats.degraded.Add(1)
	log.Warn(msg, zap.Error(err))
}

// Fallback is the summary served when generation fails.
func Fallback(text string) string {
	runes := []rune(text)
	if len(runes) > fallbackRunes {
		runes = runes[:fallbackRunes]
	}
	return fmt.Sprintf("Summary: %s...", string(runes))
}

// duplicateError is implemented by store errors reporting a unique index conflict.
type duplicateError interface {
	Duplicate() bool
}

func isDuplicate(err error) bool {
	var dup duplicateError
	return errors.As(err, &dup) && dup.Duplicate()
}
