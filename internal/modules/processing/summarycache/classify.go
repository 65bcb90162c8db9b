package summarycache

import "strings"

// Category is a coarse content label used as the first key segment.
type Category string

const (
	CategoryEmail    Category = "email"
	CategoryNews     Category = "news"
	CategoryResearch Category = "research"
	CategoryArticle  Category = "article"
	CategoryDocument Category = "document"
	CategoryGeneral  Category = "general"
)

// Categories lists every category in classification priority order, general last.
var Categories = []Category{
	CategoryEmail,
	CategoryNews,
	CategoryResearch,
	CategoryArticle,
	CategoryDocument,
	CategoryGeneral,
}

var categoryTerms = []struct {
	category Category
	terms    []string
}{
	{CategoryEmail, []string{"email", " e mail ", "inbox", "dear", "regards", "sincerely", "subject", "unsubscribe", "forwarded message"}},
	{CategoryNews, []string{"news", "breaking", "headline", "announced", "press release", "reporter", "journalist", "according to officials"}},
	{CategoryResearch, []string{"research", "study", "paper", "findings", "experiment", "hypothesis", "journal", "abstract", "methodology"}},
	{CategoryArticle, []string{"article", "blog", "essay", "author", "editorial", "opinion", "column"}},
	{CategoryDocument, []string{"document", "report", "contract", "policy", "manual", "pdf", "agreement", "specification"}},
}

// Classify returns the first category whose terms occur in normalized.
// Terms padded with spaces only match whole words.
func Classify(normalized string) Category {
	padded := " " + normalized + " "
	for _, group := range categoryTerms {
		for _, term := range group.terms {
			if strings.Contains(padded, term) {
				return group.category
			}
		}
	}
	return CategoryGeneral
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }
