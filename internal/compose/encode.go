package compose

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"

	"quotestudio/internal/domain"
)

// Format is an export file format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatPDF  Format = "pdf"
)

// JPEGQuality matches a 0.9 quality factor.
const JPEGQuality = 90

// ParseFormat recognizes png, jpeg (or jpg) and pdf.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("format %q: %w", s, domain.ErrUnsupportedFormat)
}

// ContentType is the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPDF:
		return "application/pdf"
	default:
		return "image/png"
	}
}

// FileName is the attachment name used for downloads.
func (f Format) FileName() string {
	return "quote-design." + string(f)
}

// Encode serializes img. PDF is recognized but not supported.
func Encode(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case FormatPNG:
		err = imaging.Encode(&buf, img, imaging.PNG)
	case FormatJPEG:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality))
	case FormatPDF:
		return nil, fmt.Errorf("pdf export is not supported yet: %w", domain.ErrUnsupportedFormat)
	default:
		return nil, fmt.Errorf("format %q: %w", f, domain.ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", f, err)
	}
	return buf.Bytes(), nil
}

// Export renders cfg and encodes it in one step.
func (e *Engine) Export(cfg Config, f Format) ([]byte, error) {
	if f == FormatPDF {
		return nil, fmt.Errorf("pdf export is not supported yet: %w", domain.ErrUnsupportedFormat)
	}
	img, err := e.Render(cfg)
	if err != nil {
		return nil, err
	}
	return Encode(img, f)
}
