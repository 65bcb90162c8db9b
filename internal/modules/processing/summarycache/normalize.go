package summarycache

import (
	"strings"
	"unicode"
)

// politeWords are dropped wherever they appear as whole words.
var politeWords = map[string]struct{}{
	"please": {},
	"kindly": {},
}

// politePairs are two-word phrases dropped as a unit, keyed by first word.
var politePairs = map[string]string{
	"can":   "you",
	"could": "you",
}

var synonymWords = map[string]string{
	"summary":       "summarize",
	"summarise":     "summarize",
	"summarization": "summarize",
	"summarisation": "summarize",
	"post":          "article",
	"piece":         "article",
	"content":       "article",
}

var synonymPairs = map[[2]string]string{
	{"artificial", "intelligence"}: "ai",
	{"machine", "learning"}:        "ml",
}

// Normalize canonicalizes text for matching. The result is lowercase,
// holds only letters, digits and single spaces, carries no polite filler
// and uses one spelling per synonym group. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	words := strings.Fields(stripPunctuation(strings.ToLower(text)))
	words = stripPolite(words)
	words = canonicalizeSynonyms(words)
	return strings.Join(words, " ")
}

// stripPunctuation replaces every rune that is not a letter or digit with a space.
func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
}

// stripPolite removes filler until none is left; removing a word can make
// "can" and "you" adjacent.
func stripPolite(words []string) []string {
	for {
		out := make([]string, 0, len(words))
		changed := false
		for i := 0; i < len(words); i++ {
			w := words[i]
			if _, ok := politeWords[w]; ok {
				changed = true
				continue
			}
			if next, ok := politePairs[w]; ok && i+1 < len(words) && words[i+1] == next {
				changed = true
				i++
				continue
			}
			out = append(out, w)
		}
		if !changed {
			return out
		}
		words = out
	}
}

func canonicalizeSynonyms(words []string) []string {
	out := make([]string, 0, len(words))
	for i := 0; i < len(words); i++ {
		if i+1 < len(words) {
			if repl, ok := synonymPairs[[2]string{words[i], words[i+1]}]; ok {
				out = append(out, repl)
				i++
				continue
			}
		}
		if repl, ok := synonymWords[words[i]]; ok {
			out = append(out, repl)
			continue
		}
		out = append(out, words[i])
	}
	return out
}

// WordCount counts whitespace separated tokens.
func WordCount(normalized string) int {
	return len(strings.Fields(normalized))
}
