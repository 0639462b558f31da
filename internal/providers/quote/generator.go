package quote

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"quotestudio/internal/domain/jsoncfg"
)

const staticProviderName = "static"

const (
	// MinQuotes and MaxQuotes bound how many quotes one generation returns.
	MinQuotes = 8
	MaxQuotes = 11
)

type Request struct {
	Params jsoncfg.QuoteRequestJSON
	Locale string
}

type Response struct {
	Quotes   []string          `json:"quotes"`
	Metadata map[string]string `json:"metadata"`
	Provider string            `json:"-"`
}

// Generator produces candidate quotes for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// StaticGenerator fills a fixed set of sentences with the request's
// category, mood and keyword.
type StaticGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewStaticGenerator(src rand.Source) *StaticGenerator {
	if src == nil {
		src = rand.NewSource(rand.Int63())
	}
	return &StaticGenerator{rng: rand.New(src)}
}

func (g *StaticGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := req.Params
	if p.Category == "" || p.Mood == "" {
		return nil, fmt.Errorf("category and mood are required")
	}
	lower := cases.Lower(language.English)
	mood := lower.String(p.Mood)
	category := lower.String(p.Category)
	kw := func(fallback string) string {
		if p.Keyword != "" {
			return p.Keyword
		}
		return fallback
	}

	all := []string{
		fmt.Sprintf("The path to %s begins with a single step of courage.", kw("success")),
		fmt.Sprintf("In every %s moment, we find the strength to grow.", mood),
		fmt.Sprintf("%s is not about perfection, it's about progress.", p.Category),
		fmt.Sprintf("Today's %s are tomorrow's achievements.", kw("challenges")),
		fmt.Sprintf("Embrace the %s energy within you.", mood),
		fmt.Sprintf("Great %s starts with believing in yourself.", category),
		fmt.Sprintf("Every sunrise brings new opportunities for %s.", kw("growth")),
		"The magic happens when you step outside your comfort zone.",
		fmt.Sprintf("Your %s spirit is your greatest asset.", mood),
		"Transform your dreams into reality, one day at a time.",
		"Success is the result of preparation meeting opportunity.",
		"Life rewards those who dare to be different.",
	}

	g.mu.Lock()
	n := MinQuotes + g.rng.Intn(MaxQuotes-MinQuotes+1)
	g.mu.Unlock()

	return &Response{
		Quotes: all[:n],
		Metadata: map[string]string{
			"category": p.Category,
			"mood":     p.Mood,
			"language": p.Language,
			"length":   fmt.Sprint(p.Length),
			"locale":   req.Locale,
		},
		Provider: staticProviderName,
	}, nil
}

var _ Generator = (*StaticGenerator)(nil)
