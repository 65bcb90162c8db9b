package summarycache

import "sync/atomic"

// Source names the step that produced a summary.
type Source string

const (
	SourceFastExact      Source = "fast_exact"
	SourceFastSimilar    Source = "fast_similar"
	SourceDurableExact   Source = "durable_exact"
	SourceDurableSimilar Source = "durable_similar"
	SourceDurableKeyword Source = "durable_keyword"
	SourceGenerated      Source = "generated"
	SourceFallback       Source = "fallback"
)

var sources = []Source{
	SourceFastExact,
	SourceFastSimilar,
	SourceDurableExact,
	SourceDurableSimilar,
	SourceDurableKeyword,
	SourceGenerated,
	SourceFallback,
}

// Cached reports whether the summary came from either tier.
func (s Source) Cached() bool {
	switch s {
	case SourceFastExact, SourceFastSimilar, SourceDurableExact, SourceDurableSimilar, SourceDurableKeyword:
		return true
	}
	return false
}

type counters struct {
	bySource map[Source]*atomic.Int64
	degraded atomic.Int64
	shared   atomic.Int64
}

func newCounters() *counters {
	c := &counters{bySource: make(map[Source]*atomic.Int64, len(sources))}
	for _, s := range sources {
		c.bySource[s] = new(atomic.Int64)
	}
	return c
}

func (c *counters) record(s Source) {
	if n, ok := c.bySource[s]; ok {
		n.Add(1)
	}
}

// Stats is a point-in-time copy of the engine counters.
type Stats struct {
	Sources map[Source]int64 `json:"sources"`
	// Degraded counts tier errors that were logged and skipped.
	Degraded int64 `json:"degraded"`
	// Shared counts callers handed a summary by another caller's in-flight
	// lookup. They are counted here instead of under Sources.
	Shared int64 `json:"shared"`
	Total  int64 `json:"total"`
}

// HitRatio is the share of lookups answered without a generator call of their
// own: cache tier hits plus shared lookups.
func (s Stats) HitRatio() float64 {
	if s.Total == 0 {
		return 0
	}
	hits := s.Shared
	for src, n := range s.Sources {
		if src.Cached() {
			hits += n
		}
	}
	return float64(hits) / float64(s.Total)
}

func (c *counters) snapshot() Stats {
	out := Stats{
		Sources:  make(map[Source]int64, len(c.bySource)),
		Degraded: c.degraded.Load(),
		Shared:   c.shared.Load(),
	}
	out.Total = out.Shared
	for s, n := range c.bySource {
		v := n.Load()
		out.Sources[s] = v
		out.Total += v
	}
	return out
}
