package compose

import (
	"strings"

	"golang.org/x/image/font"
)

// Line is one positioned line of text. X is the left edge the glyphs start
// at; BaselineY is the baseline.
type Line struct {
	Text      string  `json:"text"`
	X         float64 `json:"x"`
	BaselineY float64 `json:"baseline_y"`
	Width     float64 `json:"width"`
}

// Block is the laid out text of a design.
type Block struct {
	Template   Template `json:"template"`
	Align      Align    `json:"align"`
	AnchorX    float64  `json:"anchor_x"`
	LineHeight float64  `json:"line_height"`
	MaxWidth   float64  `json:"max_width"`
	Lines      []Line   `json:"lines"`
}

// Engine lays out and renders designs with fonts from a registry.
type Engine struct {
	fonts *FontRegistry
}

// NewEngine returns an Engine drawing with fonts.
func NewEngine(fonts *FontRegistry) *Engine {
	return &Engine{fonts: fonts}
}

// Fonts exposes the registry backing the engine.
func (e *Engine) Fonts() *FontRegistry {
	return e.fonts
}

// Layout wraps and positions the text of cfg without drawing it.
func (e *Engine) Layout(cfg Config) (Block, error) {
	r, err := cfg.resolve()
	if err != nil {
		return Block{}, err
	}
	face, err := e.fonts.NewFace(r.cfg.FontFamily, r.weight, r.cfg.FontSize)
	if err != nil {
		return Block{}, err
	}
	defer face.Close()
	return layoutBlock(r, faceMeasure(face)), nil
}

func faceMeasure(face font.Face) func(string) float64 {
	return func(s string) float64 {
		return float64(font.MeasureString(face, s)) / 64
	}
}

func layoutBlock(r resolved, measure func(string) float64) Block {
	w := float64(r.template.Width)
	h := float64(r.template.Height)
	maxWidth := w - 2*Margin
	lineHeight := r.cfg.FontSize * LineHeightFactor
	anchor := AnchorX(r.template, r.cfg.TextAlign)

	var texts []string
	for _, paragraph := range strings.Split(r.cfg.Text, "\n") {
		texts = append(texts, wrap(paragraph, maxWidth, measure)...)
	}

	startY := h/2 - float64(len(texts))*lineHeight/2
	lines := make([]Line, len(texts))
	for i, raw := range texts {
		text := strings.TrimSpace(raw)
		width := measure(text)
		x := anchor
		switch r.cfg.TextAlign {
		case AlignCenter:
			x = anchor - width/2
		case AlignRight:
			x = anchor - width
		}
		lines[i] = Line{Text: text, X: x, BaselineY: startY + float64(i)*lineHeight, Width: width}
	}
	return Block{
		Template:   r.template,
		Align:      r.cfg.TextAlign,
		AnchorX:    anchor,
		LineHeight: lineHeight,
		MaxWidth:   maxWidth,
		Lines:      lines,
	}
}

// AnchorX returns the x coordinate text is aligned against.
func AnchorX(t Template, align Align) float64 {
	switch align {
	case AlignRight:
		return float64(t.Width - Margin)
	case AlignLeft:
		return Margin
	default:
		return float64(t.Width) / 2
	}
}

// wrap breaks text greedily at single spaces. Each candidate is measured with
// its trailing space; a word wider than maxWidth on its own stays whole.
// Returned lines keep their trailing space.
func wrap(text string, maxWidth float64, measure func(string) float64) []string {
	var lines []string
	current := ""
	for _, word := range strings.Split(text, " ") {
		test := current + word + " "
		if measure(test) > maxWidth && current != "" {
			lines = append(lines, current)
			current = word + " "
			continue
		}
		current = test
	}
	return append(lines, current)
}
