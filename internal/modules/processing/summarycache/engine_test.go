package summarycache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mx-space/summarizer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	paperText   = "Can you please summarize this AI research paper for me today"
	similarText = "Summarize this AI research paper about robots"
)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *fakeFast, *fakeDurable, *fakeGen) {
	t.Helper()
	fast := newFakeFast()
	durable := &fakeDurable{}
	gen := &fakeGen{}
	engine, err := New(fast, durable, gen, opts...)
	require.NoError(t, err)
	return engine, fast, durable, gen
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(nil, &fakeDurable{}, &fakeGen{})
	assert.Error(t, err)
	_, err = New(newFakeFast(), nil, &fakeGen{})
	assert.Error(t, err)
	_, err = New(newFakeFast(), &fakeDurable{}, nil)
	assert.Error(t, err)
}

func TestResolveRoundTrip(t *testing.T) {
	engine, fast, durable, gen := newTestEngine(t)
	ctx := context.Background()

	first := engine.ResolveDetailed(ctx, paperText)
	assert.Equal(t, SourceGenerated, first.Source)
	assert.Equal(t, "generated: "+paperText, first.Summary)
	assert.Equal(t, BuildKey(paperText).String(), first.Key)

	stored := "summary:" + first.Key
	assert.Equal(t, first.Summary, fast.values[stored])
	assert.Equal(t, 24*time.Hour, fast.ttls[stored])

	record := durable.byHash(Digest(paperText))
	require.NotNil(t, record)
	assert.Equal(t, Digest(Normalize(paperText)), record.NormalizedHash)
	assert.Equal(t, paperText, record.OriginalText)
	assert.Equal(t, "summarize this ai research paper for me today", record.NormalizedText)
	assert.Equal(t, "research", record.Category)
	assert.Equal(t, 8, record.WordCount)
	assert.False(t, record.CreatedAt.IsZero())

	second := engine.ResolveDetailed(ctx, paperText)
	assert.Equal(t, SourceFastExact, second.Source)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, 1, gen.count())
}

func TestResolveNormalizedVariantHitsExactKey(t *testing.T) {
	engine, _, _, gen := newTestEngine(t)
	ctx := context.Background()

	engine.Resolve(ctx, "Please summarize this research paper.")
	res := engine.ResolveDetailed(ctx, "summarize THIS research paper")
	assert.Equal(t, SourceFastExact, res.Source)
	assert.Equal(t, 1, gen.count())
}

func TestResolveFastSimilar(t *testing.T) {
	engine, fast, _, gen := newTestEngine(t)
	ctx := context.Background()

	seeded := engine.Resolve(ctx, paperText)
	res := engine.ResolveDetailed(ctx, similarText)

	assert.Equal(t, SourceFastSimilar, res.Source)
	assert.Equal(t, seeded, res.Summary)
	assert.Equal(t, 1, gen.count())

	// written back under the new text's own key
	key := "summary:" + BuildKey(similarText).String()
	assert.Equal(t, seeded, fast.values[key])
	assert.Equal(t, DefaultTTL, fast.ttls[key])

	again := engine.ResolveDetailed(ctx, similarText)
	assert.Equal(t, SourceFastExact, again.Source)
}

func TestResolveFastSimilarFirstInEnumerationOrder(t *testing.T) {
	engine, fast, _, gen := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, fast.Set(ctx, "summary:research_7_aaa", "first", time.Hour))
	require.NoError(t, fast.Set(ctx, "summary:research_8_bbb", "second", time.Hour))

	res := engine.ResolveDetailed(ctx, paperText)
	assert.Equal(t, SourceFastSimilar, res.Source)
	assert.Equal(t, "first", res.Summary)
	assert.Equal(t, 0, gen.count())
}

func TestResolveFastSimilarSkipsExpiredAndForeignKeys(t *testing.T) {
	engine, fast, _, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, fast.Set(ctx, "summary:research_8_gone", "expired", time.Hour))
	require.NoError(t, fast.Set(ctx, "summary:research_x_bad", "malformed", time.Hour))
	require.NoError(t, fast.Set(ctx, "summary:news_8_ccc", "other category", time.Hour))
	require.NoError(t, fast.Set(ctx, "summary:research_9_ddd", "live", time.Hour))
	fast.expire("summary:research_8_gone")

	res := engine.ResolveDetailed(ctx, paperText)
	assert.Equal(t, SourceFastSimilar, res.Source)
	assert.Equal(t, "live", res.Summary)
}

func TestResolveBandBoundaries(t *testing.T) {
	// paperText has 8 words: band [6, 10]
	tests := []struct {
		words int
		hit   bool
	}{
		{5, false},
		{6, true},
		{10, true},
		{11, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d words", tt.words), func(t *testing.T) {
			engine, fast, _, gen := newTestEngine(t)
			ctx := context.Background()
			key := fmt.Sprintf("summary:research_%d_%s", tt.words, Digest("other"))
			require.NoError(t, fast.Set(ctx, key, "cached", time.Hour))

			res := engine.ResolveDetailed(ctx, paperText)
			if tt.hit {
				assert.Equal(t, SourceFastSimilar, res.Source)
				assert.Equal(t, 0, gen.count())
			} else {
				assert.Equal(t, SourceGenerated, res.Source)
				assert.Equal(t, 1, gen.count())
			}
		})
	}
}

func TestResolveDurableExact(t *testing.T) {
	engine, fast, durable, gen := newTestEngine(t)
	ctx := context.Background()
	fp := NewFingerprint(paperText)
	durable.records = append(durable.records, &models.SummaryRecord{
		Hash:           Digest("some other raw form"),
		NormalizedHash: fp.Digest,
		Category:       string(fp.Category),
		WordCount:      fp.WordCount,
		Summary:        "stored",
	})

	res := engine.ResolveDetailed(ctx, paperText)
	assert.Equal(t, SourceDurableExact, res.Source)
	assert.Equal(t, "stored", res.Summary)
	assert.Equal(t, "stored", fast.values["summary:"+fp.Key().String()])
	assert.Equal(t, 0, gen.count())
	assert.Equal(t, 0, durable.inserts)
}

func TestResolveDurableExactLegacyHash(t *testing.T) {
	engine, _, durable, _ := newTestEngine(t)
	fp := NewFingerprint(paperText)
	durable.records = append(durable.records, &models.SummaryRecord{
		Hash:    fp.Digest,
		Summary: "legacy",
	})

	res := engine.ResolveDetailed(context.Background(), paperText)
	assert.Equal(t, SourceDurableExact, res.Source)
	assert.Equal(t, "legacy", res.Summary)
}

func TestResolveDurableSimilarPicksNewestAndDuplicates(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	engine, fast, durable, gen := newTestEngine(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()
	durable.records = append(durable.records,
		&models.SummaryRecord{Hash: "old", Category: "research", WordCount: 8, Summary: "older", CreatedAt: now.Add(-2 * time.Hour)},
		&models.SummaryRecord{Hash: "new", Category: "research", WordCount: 9, Summary: "newer", CreatedAt: now.Add(-time.Hour)},
		&models.SummaryRecord{Hash: "far", Category: "research", WordCount: 30, Summary: "out of band", CreatedAt: now},
	)

	res := engine.ResolveDetailed(ctx, similarText)
	assert.Equal(t, SourceDurableSimilar, res.Source)
	assert.Equal(t, "newer", res.Summary)
	assert.Equal(t, 0, gen.count())

	fp := NewFingerprint(similarText)
	assert.Equal(t, "newer", fast.values["summary:"+fp.Key().String()])

	copied := durable.byHash(Digest(similarText))
	require.NotNil(t, copied)
	assert.Equal(t, "newer", copied.Summary)
	assert.Equal(t, fp.Digest, copied.NormalizedHash)
	assert.Equal(t, fp.Normalized, copied.NormalizedText)
	assert.Equal(t, string(fp.Category), copied.Category)
	assert.Equal(t, fp.WordCount, copied.WordCount)
	assert.Equal(t, now, copied.CreatedAt)

	// the source record is untouched
	assert.Equal(t, "new", durable.records[1].Hash)
	assert.Equal(t, 4, len(durable.records))

	// next time the new text matches exactly
	fast.expire("summary:" + fp.Key().String())
	again := engine.ResolveDetailed(ctx, similarText)
	assert.Equal(t, SourceDurableExact, again.Source)
}

func TestResolveDurableKeywordFallback(t *testing.T) {
	engine, _, durable, gen := newTestEngine(t)
	durable.records = append(durable.records, &models.SummaryRecord{
		Hash:           "kw",
		Category:       "article",
		NormalizedText: "robots paper overview for everyone",
		WordCount:      7,
		Summary:        "keyword match",
	})

	res := engine.ResolveDetailed(context.Background(), similarText)
	assert.Equal(t, SourceDurableKeyword, res.Source)
	assert.Equal(t, "keyword match", res.Summary)
	assert.Equal(t, 0, gen.count())
	assert.NotNil(t, durable.byHash(Digest(similarText)))
}

func TestResolveKeywordSearchRespectsBand(t *testing.T) {
	engine, _, durable, gen := newTestEngine(t)
	durable.records = append(durable.records, &models.SummaryRecord{
		Hash:           "kw",
		Category:       "article",
		NormalizedText: "robots",
		WordCount:      1,
		Summary:        "too short",
	})

	res := engine.ResolveDetailed(context.Background(), similarText)
	assert.Equal(t, SourceGenerated, res.Source)
	assert.Equal(t, 1, gen.count())
}

func TestResolveGeneratorFailureFallsBack(t *testing.T) {
	engine, fast, durable, gen := newTestEngine(t)
	gen.err = errors.New("provider down")
	text := strings.Repeat("é", 60) + strings.Repeat("x", 60)

	res := engine.ResolveDetailed(context.Background(), text)
	assert.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, "Summary: "+strings.Repeat("é", 60)+strings.Repeat("x", 40)+"...", res.Summary)
	assert.Empty(t, fast.values)
	assert.Empty(t, durable.records)
}

func TestResolveScenarioFallback(t *testing.T) {
	engine, _, _, gen := newTestEngine(t)
	gen.err = errors.New("boom")
	assert.Equal(t, "Summary: "+paperText+"...", engine.Resolve(context.Background(), paperText))
}

func TestResolveEmptyGeneration(t *testing.T) {
	engine, _, _, gen := newTestEngine(t)
	gen.summary = func(string) string { return "   " }

	res := engine.ResolveDetailed(context.Background(), paperText)
	assert.Equal(t, SourceFallback, res.Source)
}

func TestResolveFastTierFailureSoftFails(t *testing.T) {
	engine, fast, durable, gen := newTestEngine(t)
	fast.fail = true

	res := engine.ResolveDetailed(context.Background(), paperText)
	assert.Equal(t, SourceGenerated, res.Source)
	assert.Equal(t, 1, gen.count())
	assert.Equal(t, 1, durable.inserts)

	res = engine.ResolveDetailed(context.Background(), paperText)
	assert.Equal(t, SourceDurableExact, res.Source)
	assert.Equal(t, 1, gen.count())
	assert.Greater(t, engine.Stats().Degraded, int64(0))
}

func TestResolveDurableFailureSoftFails(t *testing.T) {
	engine, fast, durable, gen := newTestEngine(t)
	durable.failAll = true

	res := engine.ResolveDetailed(context.Background(), paperText)
	assert.Equal(t, SourceGenerated, res.Source)
	assert.Equal(t, 1, gen.count())
	assert.Len(t, fast.values, 1)
}

func TestResolveDuplicateInsertIgnored(t *testing.T) {
	engine, _, durable, _ := newTestEngine(t)
	durable.records = append(durable.records, &models.SummaryRecord{Hash: Digest(paperText), NormalizedHash: "unrelated"})
	durable.failFind = true

	res := engine.ResolveDetailed(context.Background(), paperText)
	assert.Equal(t, SourceGenerated, res.Source)
	assert.Equal(t, 0, durable.inserts)
	assert.Equal(t, int64(3), engine.Stats().Degraded)
}

func TestResolveCoalescesConcurrentCallers(t *testing.T) {
	engine, _, _, gen := newTestEngine(t, WithCoalescing(true))
	gen.gate = make(chan struct{})

	var wg sync.WaitGroup
	results := make([]Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = engine.ResolveDetailed(context.Background(), paperText)
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(gen.gate)
	wg.Wait()

	assert.Equal(t, 1, gen.count())
	for _, r := range results {
		assert.Equal(t, "generated: "+paperText, r.Summary)
	}

	// callers that arrived after the write-back read the fast tier instead of sharing
	stats := engine.Stats()
	assert.Equal(t, int64(8), stats.Total)
	assert.Equal(t, int64(1), stats.Sources[SourceGenerated])
	assert.Equal(t, int64(7), stats.Shared+stats.Sources[SourceFastExact])
	assert.InDelta(t, 7.0/8.0, stats.HitRatio(), 1e-9)
}

func TestResolveCoalescedFallbackUsesCallerText(t *testing.T) {
	engine, _, _, gen := newTestEngine(t, WithCoalescing(true))
	gen.gate = make(chan struct{})
	gen.err = errors.New("provider down")

	first := "Summarize this research paper, please!"
	second := "SUMMARIZE this research paper"
	require.Equal(t, BuildKey(first), BuildKey(second))

	var wg sync.WaitGroup
	var firstRes, secondRes Result
	wg.Add(2)
	go func() {
		defer wg.Done()
		firstRes = engine.ResolveDetailed(context.Background(), first)
	}()
	time.Sleep(20 * time.Millisecond)
	go func() {
		defer wg.Done()
		secondRes = engine.ResolveDetailed(context.Background(), second)
	}()
	time.Sleep(20 * time.Millisecond)
	close(gen.gate)
	wg.Wait()

	assert.Equal(t, 1, gen.count())
	assert.Equal(t, SourceFallback, firstRes.Source)
	assert.Equal(t, "Summary: Summarize this research paper, please!...", firstRes.Summary)
	assert.Equal(t, SourceFallback, secondRes.Source)
	assert.Equal(t, "Summary: SUMMARIZE this research paper...", secondRes.Summary)
	assert.Equal(t, int64(2), engine.Stats().Sources[SourceFallback])
}

func TestResolveCoalescedSurvivesFirstCallerCancel(t *testing.T) {
	engine, _, _, gen := newTestEngine(t, WithCoalescing(true))
	gen.gate = make(chan struct{})

	firstCtx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var firstRes, secondRes Result
	wg.Add(2)
	go func() {
		defer wg.Done()
		firstRes = engine.ResolveDetailed(firstCtx, paperText)
	}()
	time.Sleep(20 * time.Millisecond)
	go func() {
		defer wg.Done()
		secondRes = engine.ResolveDetailed(context.Background(), paperText)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)
	close(gen.gate)
	wg.Wait()

	assert.Equal(t, SourceFallback, firstRes.Source)
	assert.Equal(t, Fallback(paperText), firstRes.Summary)
	assert.Equal(t, SourceGenerated, secondRes.Source)
	assert.Equal(t, "generated: "+paperText, secondRes.Summary)
	assert.Equal(t, 1, gen.count())
}

func TestResolveKeyPrefixAndTTL(t *testing.T) {
	engine, fast, _, _ := newTestEngine(t, WithKeyPrefix("sum:"), WithTTL(time.Minute))
	res := engine.ResolveDetailed(context.Background(), paperText)

	assert.Equal(t, time.Minute, fast.ttls["sum:"+res.Key])
	_, unprefixed := fast.values["summary:"+res.Key]
	assert.False(t, unprefixed)
}

func TestStats(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	ctx := context.Background()

	engine.Resolve(ctx, paperText)
	engine.Resolve(ctx, paperText)
	engine.Resolve(ctx, similarText)

	stats := engine.Stats()
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.Sources[SourceGenerated])
	assert.Equal(t, int64(1), stats.Sources[SourceFastExact])
	assert.Equal(t, int64(1), stats.Sources[SourceFastSimilar])
	assert.Equal(t, int64(0), stats.Sources[SourceFallback])
	assert.InDelta(t, 2.0/3.0, stats.HitRatio(), 1e-9)
}

func TestFallback(t *testing.T) {
	assert.Equal(t, "Summary: ...", Fallback(""))
	assert.Equal(t, "Summary: short...", Fallback("short"))
	long := strings.Repeat("a", 150)
	assert.Equal(t, "Summary: "+strings.Repeat("a", 100)+"...", Fallback(long))
}

func TestGeneratorFunc(t *testing.T) {
	gen := GeneratorFunc(func(_ context.Context, text string) (string, error) {
		return strings.ToUpper(text), nil
	})
	out, err := gen.Generate(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "ABC", out)
}
