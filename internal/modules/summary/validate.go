package summary

import (
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"
)

const (
	MinTextLength = 10
	MaxTextLength = 300
)

var (
	ErrTextTooShort = fmt.Errorf("text must be at least %d characters", MinTextLength)
	ErrTextTooLong  = fmt.Errorf("text must be at most %d characters", MaxTextLength)
	ErrInjection    = errors.New("text contains disallowed content")
)

var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\s*script`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)<[a-z][a-z0-9]*\b[^>]*\son[a-z]+\s*=`),
	regexp.MustCompile(`(?i)\b(ignore|disregard|forget)\s+(all\s+)?(the\s+)?(previous|prior|above|earlier)\s+(instructions|prompts?|rules)`),
	regexp.MustCompile(`(?i)\byou\s+are\s+now\s+(a|an|in)\b`),
	regexp.MustCompile(`(?i)\b(reveal|print|show)\s+(your|the)\s+system\s+prompt`),
}

// Validate checks raw input for injection patterns and the sanitized
// text for its length bounds, counted in characters.
func Validate(raw, sanitized string) error {
	for _, pattern := range injectionPatterns {
		if pattern.MatchString(raw) {
			return ErrInjection
		}
	}
	n := utf8.RuneCountInString(sanitized)
	if n < MinTextLength {
		return ErrTextTooShort
	}
	if n > MaxTextLength {
		return ErrTextTooLong
	}
	return nil
}
