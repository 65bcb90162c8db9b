package summarycache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedKey is returned by ParseKey for strings not shaped like a Key.
var ErrMalformedKey = errors.New("malformed cache key")

// Key identifies a summary in the fast tier: {category}_{wordCount}_{digest}.
type Key struct {
	Category  Category
	WordCount int
	Digest    string
}

func (k Key) String() string {
	return fmt.Sprintf("%s_%d_%s", k.Category, k.WordCount, k.Digest)
}

// ParseKey splits a key string back into its segments.
func ParseKey(s string) (Key, error) {
	parts := strings.SplitN(s, "_", 3)
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return Key{}, fmt.Errorf("%w: %q", ErrMalformedKey, s)
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil || n < 0 {
		return Key{}, fmt.Errorf("%w: %q", ErrMalformedKey, s)
	}
	return Key{Category: Category(parts[0]), WordCount: n, Digest: parts[2]}, nil
}

// Band is an inclusive word-count range.
type Band struct {
	Min int
	Max int
}

// BandFor returns [floor(n*0.8), ceil(n*1.2)] computed in integers.
func BandFor(n int) Band {
	return Band{Min: 4 * n / 5, Max: (6*n + 4) / 5}
}

func (b Band) Contains(n int) bool {
	return n >= b.Min && n <= b.Max
}

// Pattern describes the fast-tier similarity scan for a text.
type Pattern struct {
	Category Category
	Band     Band
	// Glob matches every key of the category; word counts are filtered after parsing.
	Glob string
}

// Fingerprint holds everything derived from one input text.
type Fingerprint struct {
	Normalized string
	Category   Category
	WordCount  int
	Digest     string
}

// NewFingerprint normalizes, classifies, counts and hashes text.
func NewFingerprint(text string) Fingerprint {
	normalized := Normalize(text)
	return Fingerprint{
		Normalized: normalized,
		Category:   Classify(normalized),
		WordCount:  WordCount(normalized),
		Digest:     Digest(normalized),
	}
}

func (f Fingerprint) Key() Key {
	return Key{Category: f.Category, WordCount: f.WordCount, Digest: f.Digest}
}

func (f Fingerprint) Band() Band {
	return BandFor(f.WordCount)
}

func (f Fingerprint) Pattern() Pattern {
	return Pattern{
		Category: f.Category,
		Band:     f.Band(),
		Glob:     string(f.Category) + "_*",
	}
}

// LeadingWords returns the first n normalized words joined by spaces.
func (f Fingerprint) LeadingWords(n int) string {
	words := strings.Fields(f.Normalized)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// BuildKey derives the cache key for text.
func BuildKey(text string) Key {
	return NewFingerprint(text).Key()
}

// BuildPattern derives the similarity scan pattern for text.
func BuildPattern(text string) Pattern {
	return NewFingerprint(text).Pattern()
}

// Digest is the hex sha256 of s.
func Digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
