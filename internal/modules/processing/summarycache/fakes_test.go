package summarycache

import (
	"context"
	"errors"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mx-space/summarizer/internal/models"
)

var errUnavailable = errors.New("tier unavailable")

type fakeFast struct {
	mu     sync.Mutex
	order  []string
	values map[string]string
	ttls   map[string]time.Duration
	fail   bool
	sets   int
}

func newFakeFast() *fakeFast {
	return &fakeFast{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeFast) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", false, errUnavailable
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeFast) Set(_ context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errUnavailable
	}
	if _, ok := f.values[key]; !ok {
		f.order = append(f.order, key)
	}
	f.values[key] = value
	f.ttls[key] = ttl
	f.sets++
	return nil
}

func (f *fakeFast) Keys(_ context.Context, pattern string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errUnavailable
	}
	var out []string
	for _, key := range f.order {
		if ok, _ := path.Match(pattern, key); ok {
			out = append(out, key)
		}
	}
	return out, nil
}

// expire removes a key but leaves it in the enumeration, as a key expiring mid-scan would.
func (f *fakeFast) expire(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
}

type dupErr struct{}

func (dupErr) Error() string   { return "duplicate" }
func (dupErr) Duplicate() bool { return true }

type fakeDurable struct {
	mu       sync.Mutex
	records  []*models.SummaryRecord
	failAll  bool
	failFind bool
	inserts  int
}

func (d *fakeDurable) FindByHash(_ context.Context, digest string) (*models.SummaryRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failAll || d.failFind {
		return nil, errUnavailable
	}
	for _, r := range d.records {
		if r.NormalizedHash == digest || r.Hash == digest {
			return r, nil
		}
	}
	return nil, nil
}

func (d *fakeDurable) FindRecent(_ context.Context, category string, min, max int) (*models.SummaryRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failAll || d.failFind {
		return nil, errUnavailable
	}
	var matches []*models.SummaryRecord
	for _, r := range d.records {
		if r.Category == category && r.WordCount >= min && r.WordCount <= max {
			matches = append(matches, r)
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches[0], nil
}

func (d *fakeDurable) SearchText(_ context.Context, query string, min, max int) (*models.SummaryRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failAll || d.failFind {
		return nil, errUnavailable
	}
	terms := strings.Fields(query)
	for _, r := range d.records {
		if r.WordCount < min || r.WordCount > max {
			continue
		}
		words := strings.Fields(r.NormalizedText)
		for _, term := range terms {
			for _, w := range words {
				if w == term {
					return r, nil
				}
			}
		}
	}
	return nil, nil
}

func (d *fakeDurable) Insert(_ context.Context, record *models.SummaryRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failAll {
		return errUnavailable
	}
	for _, r := range d.records {
		if r.Hash == record.Hash {
			return dupErr{}
		}
	}
	d.inserts++
	d.records = append(d.records, record)
	return nil
}

func (d *fakeDurable) byHash(hash string) *models.SummaryRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, r := range d.records {
		if r.Hash == hash {
			return r
		}
	}
	return nil
}

type fakeGen struct {
	mu      sync.Mutex
	calls   int
	err     error
	summary func(text string) string
	gate    chan struct{}
}

func (g *fakeGen) Generate(ctx context.Context, text string) (string, error) {
	if g.gate != nil {
		<-g.gate
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if g.err != nil {
		return "", g.err
	}
	if g.summary != nil {
		return g.summary(text), nil
	}
	return "generated: " + text, nil
}

func (g *fakeGen) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}
