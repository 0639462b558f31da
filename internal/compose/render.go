package compose

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Render draws cfg onto a new canvas sized by its template. The same config
// always yields the same pixels.
func (e *Engine) Render(cfg Config) (*image.NRGBA, error) {
	r, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	w, h := r.template.Width, r.template.Height

	var canvas *image.NRGBA
	if r.cfg.BackgroundType == BackgroundGradient {
		canvas = imaging.New(w, h, color.NRGBA{})
		fillGradient(canvas, r.start, r.end)
	} else {
		canvas = imaging.New(w, h, r.bg)
	}

	face, err := e.fonts.NewFace(r.cfg.FontFamily, r.weight, r.cfg.FontSize)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	block := layoutBlock(r, faceMeasure(face))
	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(r.text),
		Face: face,
	}
	for _, l := range block.Lines {
		if l.Text == "" {
			continue
		}
		d.Dot = fixed.Point26_6{X: toFixed(l.X), Y: toFixed(l.BaselineY)}
		d.DrawString(l.Text)
	}
	return canvas, nil
}

// fillGradient paints a linear gradient from the top-left corner (start) to
// the bottom-right corner (end), sampling at pixel centers.
func fillGradient(img *image.NRGBA, start, end color.NRGBA) {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	denom := w*w + h*h
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride:]
		fy := (float64(y) + 0.5) * h
		for x := 0; x < b.Dx(); x++ {
			t := ((float64(x)+0.5)*w + fy) / denom
			if t < 0 {
				t = 0
			} else if t > 1 {
				t = 1
			}
			c := lerpColor(start, end, t)
			i := x * 4
			row[i], row[i+1], row[i+2], row[i+3] = c.R, c.G, c.B, c.A
		}
	}
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
