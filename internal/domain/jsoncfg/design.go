package jsoncfg

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"quotestudio/internal/compose"
	"quotestudio/internal/domain"
)

// MaxDesignTextLength bounds the quote text placed on a design.
const MaxDesignTextLength = 2000

// DesignJSON is the wire form of a design configuration.
type DesignJSON struct {
	Text            string  `json:"text"`
	FontFamily      string  `json:"font_family"`
	FontSize        float64 `json:"font_size"`
	FontWeight      string  `json:"font_weight"`
	TextColor       string  `json:"text_color"`
	BackgroundType  string  `json:"background_type"`
	BackgroundColor string  `json:"background_color"`
	GradientStart   string  `json:"gradient_start"`
	GradientEnd     string  `json:"gradient_end"`
	TextAlign       string  `json:"text_align"`
	Template        string  `json:"template"`
}

// Normalize fills omitted fields with the editor defaults.
func (d *DesignJSON) Normalize() {
	if d == nil {
		return
	}
	def := compose.DefaultConfig()
	if strings.TrimSpace(d.FontFamily) == "" {
		d.FontFamily = def.FontFamily
	}
	if d.FontSize == 0 {
		d.FontSize = def.FontSize
	}
	if strings.TrimSpace(d.FontWeight) == "" {
		d.FontWeight = def.FontWeight
	}
	if strings.TrimSpace(d.TextColor) == "" {
		d.TextColor = def.TextColor
	}
	d.BackgroundType = strings.ToLower(strings.TrimSpace(d.BackgroundType))
	if d.BackgroundType == "" {
		d.BackgroundType = string(def.BackgroundType)
	}
	if strings.TrimSpace(d.BackgroundColor) == "" {
		d.BackgroundColor = def.BackgroundColor
	}
	if strings.TrimSpace(d.GradientStart) == "" {
		d.GradientStart = def.GradientStart
	}
	if strings.TrimSpace(d.GradientEnd) == "" {
		d.GradientEnd = def.GradientEnd
	}
	d.TextAlign = strings.ToLower(strings.TrimSpace(d.TextAlign))
	if d.TextAlign == "" {
		d.TextAlign = string(def.TextAlign)
	}
	d.Template = strings.TrimSpace(d.Template)
	if d.Template == "" {
		d.Template = def.Template
	}
}

// Validate checks the design can be rendered.
func (d DesignJSON) Validate() error {
	if strings.TrimSpace(d.Text) == "" {
		return fmt.Errorf("text is required: %w", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(d.Text) > MaxDesignTextLength {
		return fmt.Errorf("text must be at most %d characters: %w", MaxDesignTextLength, domain.ErrInvalidInput)
	}
	return d.Config().Validate()
}

// Config converts the wire form to the engine configuration.
func (d DesignJSON) Config() compose.Config {
	return compose.Config{
		Text:            d.Text,
		FontFamily:      d.FontFamily,
		FontSize:        d.FontSize,
		FontWeight:      d.FontWeight,
		TextColor:       d.TextColor,
		BackgroundType:  compose.BackgroundType(d.BackgroundType),
		BackgroundColor: d.BackgroundColor,
		GradientStart:   d.GradientStart,
		GradientEnd:     d.GradientEnd,
		TextAlign:       compose.Align(d.TextAlign),
		Template:        d.Template,
	}
}

// MustMarshal encodes v and panics on failure; only use with plain values.
func MustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("json marshal: %w", err))
	}
	return b
}
