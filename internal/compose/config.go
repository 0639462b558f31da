package compose

import (
	"fmt"
	"image/color"
	"strings"

	"quotestudio/internal/domain"
)

// Align is the horizontal text alignment.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// BackgroundType selects how the canvas is filled.
type BackgroundType string

const (
	BackgroundSolid    BackgroundType = "solid"
	BackgroundGradient BackgroundType = "gradient"
)

const (
	// Margin is the horizontal inset used for wrapping and edge anchors.
	Margin = 50
	// LineHeightFactor scales the font size into the line pitch.
	LineHeightFactor = 1.2

	MinFontSize = 8
	MaxFontSize = 400
)

// Config describes one design.
type Config struct {
	Text            string
	FontFamily      string
	FontSize        float64
	FontWeight      string
	TextColor       string
	BackgroundType  BackgroundType
	BackgroundColor string
	GradientStart   string
	GradientEnd     string
	TextAlign       Align
	Template        string
}

// DefaultConfig returns the editor's initial design.
func DefaultConfig() Config {
	return Config{
		Text:            "Your inspirational quote goes here...",
		FontFamily:      "Inter",
		FontSize:        48,
		FontWeight:      "bold",
		TextColor:       "#ffffff",
		BackgroundType:  BackgroundSolid,
		BackgroundColor: "#6366f1",
		GradientStart:   "#6366f1",
		GradientEnd:     "#8b5cf6",
		TextAlign:       AlignCenter,
		Template:        DefaultTemplateID,
	}
}

// resolved is a Config with every field parsed.
type resolved struct {
	cfg      Config
	template Template
	weight   Weight
	text     color.NRGBA
	bg       color.NRGBA
	start    color.NRGBA
	end      color.NRGBA
}

func (c Config) resolve() (resolved, error) {
	r := resolved{cfg: c}
	tmplID := c.Template
	if strings.TrimSpace(tmplID) == "" {
		tmplID = DefaultTemplateID
	}
	t, err := LookupTemplate(tmplID)
	if err != nil {
		return r, err
	}
	r.template = t

	if c.FontSize < MinFontSize || c.FontSize > MaxFontSize {
		return r, fmt.Errorf("font size must be between %d and %d: %w", MinFontSize, MaxFontSize, domain.ErrInvalidInput)
	}
	switch c.TextAlign {
	case AlignLeft, AlignCenter, AlignRight:
	case "":
		r.cfg.TextAlign = AlignCenter
	default:
		return r, fmt.Errorf("text align %q: %w", c.TextAlign, domain.ErrInvalidInput)
	}
	r.weight = ParseWeight(c.FontWeight)

	if r.text, err = ParseColor(c.TextColor); err != nil {
		return r, fmt.Errorf("text color: %w", err)
	}
	switch c.BackgroundType {
	case BackgroundGradient:
		if r.start, err = ParseColor(c.GradientStart); err != nil {
			return r, fmt.Errorf("gradient start: %w", err)
		}
		if r.end, err = ParseColor(c.GradientEnd); err != nil {
			return r, fmt.Errorf("gradient end: %w", err)
		}
	case BackgroundSolid, "":
		r.cfg.BackgroundType = BackgroundSolid
		if r.bg, err = ParseColor(c.BackgroundColor); err != nil {
			return r, fmt.Errorf("background color: %w", err)
		}
	default:
		return r, fmt.Errorf("background type %q: %w", c.BackgroundType, domain.ErrInvalidInput)
	}
	return r, nil
}

// Validate reports whether the config can be rendered.
func (c Config) Validate() error {
	_, err := c.resolve()
	return err
}
