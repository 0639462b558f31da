package jsoncfg

import (
	"errors"
	"strings"
	"testing"

	"quotestudio/internal/compose"
	"quotestudio/internal/domain"
)

func TestDesignJSONNormalizeDefaults(t *testing.T) {
	d := &DesignJSON{Text: "Hello"}
	d.Normalize()

	def := compose.DefaultConfig()
	if d.Template != def.Template {
		t.Fatalf("Template = %q, want %q", d.Template, def.Template)
	}
	if d.FontSize != def.FontSize {
		t.Fatalf("FontSize = %v, want %v", d.FontSize, def.FontSize)
	}
	if d.TextAlign != "center" {
		t.Fatalf("TextAlign = %q, want center", d.TextAlign)
	}
	if d.BackgroundType != "solid" {
		t.Fatalf("BackgroundType = %q, want solid", d.BackgroundType)
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate error: %v", err)
	}
}

func TestDesignJSONNormalizeKeepsExplicit(t *testing.T) {
	d := &DesignJSON{Text: "Hi", Template: "poster", TextAlign: " RIGHT ", BackgroundType: "Gradient"}
	d.Normalize()
	if d.Template != "poster" || d.TextAlign != "right" || d.BackgroundType != "gradient" {
		t.Fatalf("explicit values lost: %+v", d)
	}
	cfg := d.Config()
	if cfg.TextAlign != compose.AlignRight || cfg.BackgroundType != compose.BackgroundGradient {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestDesignJSONValidate(t *testing.T) {
	cases := map[string]DesignJSON{
		"empty text":   {Text: "   "},
		"long text":    {Text: strings.Repeat("a", MaxDesignTextLength+1)},
		"bad template": {Text: "x", Template: "banner"},
		"bad color":    {Text: "x", TextColor: "#12"},
	}
	for name, d := range cases {
		d.Normalize()
		if err := d.Validate(); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestQuoteRequestNormalize(t *testing.T) {
	q := &QuoteRequestJSON{Category: " motivation ", Mood: "INSPIRING"}
	q.Normalize("es-MX")
	if q.Category != "Motivation" || q.Mood != "Inspiring" {
		t.Fatalf("expected canonical names, got %q %q", q.Category, q.Mood)
	}
	if q.Language != "Spanish" {
		t.Fatalf("Language = %q, want Spanish", q.Language)
	}
	if q.Length != DefaultQuoteLength {
		t.Fatalf("Length = %d, want %d", q.Length, DefaultQuoteLength)
	}
	if err := q.Validate(); err != nil {
		t.Fatalf("Validate error: %v", err)
	}
}

func TestQuoteRequestLanguageFallback(t *testing.T) {
	q := &QuoteRequestJSON{Category: "Love", Mood: "Romantic"}
	q.Normalize("id")
	if q.Language != DefaultQuoteLanguage {
		t.Fatalf("Language = %q, want %q", q.Language, DefaultQuoteLanguage)
	}
	q = &QuoteRequestJSON{Category: "Love", Mood: "Romantic", Language: "german"}
	q.Normalize("fr")
	if q.Language != "German" {
		t.Fatalf("explicit language lost: %q", q.Language)
	}
}

func TestQuoteRequestValidate(t *testing.T) {
	cases := map[string]QuoteRequestJSON{
		"missing category": {Mood: "Calming"},
		"missing mood":     {Category: "Life"},
		"unknown category": {Category: "Gardening", Mood: "Calming"},
		"unknown language": {Category: "Life", Mood: "Calming", Language: "Klingon"},
		"short":            {Category: "Life", Mood: "Calming", Length: 2},
		"long":             {Category: "Life", Mood: "Calming", Length: 40},
	}
	for name, q := range cases {
		q.Normalize("")
		if err := q.Validate(); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestLanguageForLocale(t *testing.T) {
	cases := map[string]string{"pt-BR": "Portuguese", "de": "German", "en-US": "English", "ja": "", "": ""}
	for in, want := range cases {
		if got := LanguageForLocale(in); got != want {
			t.Fatalf("LanguageForLocale(%q) = %q, want %q", in, got, want)
		}
	}
}
