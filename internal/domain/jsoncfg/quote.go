package jsoncfg

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"quotestudio/internal/domain"
)

const (
	// DefaultQuoteLanguage is used when neither the request nor the locale names one.
	DefaultQuoteLanguage = "English"
	// DefaultQuoteLength is the word count hint applied when omitted.
	DefaultQuoteLength = 8
	MinQuoteLength     = 4
	MaxQuoteLength     = 16
	// MaxKeywordLength bounds the optional keyword.
	MaxKeywordLength = 60
)

var (
	QuoteCategories = []string{
		"Motivation", "Love", "Success", "Friendship", "Life", "Business",
		"Leadership", "Creativity", "Mindfulness", "Adventure", "Health", "Education",
	}
	QuoteMoods = []string{
		"Inspiring", "Thoughtful", "Humorous", "Romantic", "Empowering",
		"Calming", "Energetic", "Philosophical", "Uplifting", "Reflective",
	}
	QuoteLanguages = []string{"English", "Spanish", "French", "German", "Italian", "Portuguese"}
)

var languageByBase = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
}

// QuoteRequestJSON is the body of a quote generation request.
type QuoteRequestJSON struct {
	Category string `json:"category"`
	Mood     string `json:"mood"`
	Keyword  string `json:"keyword"`
	Language string `json:"language"`
	Length   int    `json:"length"`
}

// LanguageForLocale maps a BCP 47 tag to a supported quote language, or ""
// when the locale's language is not offered.
func LanguageForLocale(locale string) string {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	return languageByBase[base.String()]
}

// Normalize trims the request and fills defaults. preferredLocale is the
// request locale and decides the language when the body names none.
func (q *QuoteRequestJSON) Normalize(preferredLocale string) {
	if q == nil {
		return
	}
	q.Category = canonical(q.Category, QuoteCategories)
	q.Mood = canonical(q.Mood, QuoteMoods)
	q.Keyword = strings.TrimSpace(q.Keyword)
	q.Language = canonical(q.Language, QuoteLanguages)
	if q.Language == "" {
		q.Language = LanguageForLocale(preferredLocale)
	}
	if q.Language == "" {
		q.Language = DefaultQuoteLanguage
	}
	if q.Length == 0 {
		q.Length = DefaultQuoteLength
	}
}

// Validate checks the request contract.
func (q QuoteRequestJSON) Validate() error {
	if q.Category == "" || q.Mood == "" {
		return fmt.Errorf("please select category and mood: %w", domain.ErrInvalidInput)
	}
	if !contains(QuoteCategories, q.Category) {
		return fmt.Errorf("unknown category %q: %w", q.Category, domain.ErrInvalidInput)
	}
	if !contains(QuoteMoods, q.Mood) {
		return fmt.Errorf("unknown mood %q: %w", q.Mood, domain.ErrInvalidInput)
	}
	if !contains(QuoteLanguages, q.Language) {
		return fmt.Errorf("unsupported language %q: %w", q.Language, domain.ErrInvalidInput)
	}
	if q.Length < MinQuoteLength || q.Length > MaxQuoteLength {
		return fmt.Errorf("length must be between %d and %d: %w", MinQuoteLength, MaxQuoteLength, domain.ErrInvalidInput)
	}
	if len(q.Keyword) > MaxKeywordLength {
		return fmt.Errorf("keyword must be at most %d characters: %w", MaxKeywordLength, domain.ErrInvalidInput)
	}
	return nil
}

// canonical returns the option matching s case-insensitively; unmatched
// input is returned trimmed so Validate can report it.
func canonical(s string, options []string) string {
	s = strings.TrimSpace(s)
	for _, o := range options {
		if strings.EqualFold(o, s) {
			return o
		}
	}
	return s
}

func contains(options []string, s string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}
