package compose

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Weight is the normalized font weight.
type Weight string

const (
	WeightRegular Weight = "regular"
	WeightMedium  Weight = "medium"
	WeightBold    Weight = "bold"
)

// FallbackFamily is always registered and serves every family without files.
const FallbackFamily = "Go"

// KnownFamilies lists the families offered by the design editor.
var KnownFamilies = []string{
	"Inter", "Roboto", "Open Sans", "Lato", "Poppins", "Montserrat",
	"Playfair Display", "Dancing Script", "Oswald", "Raleway",
	"Nunito", "Source Sans Pro", "Ubuntu", "Merriweather", "Lora",
}

// ParseWeight maps CSS style weights to the three supported weights.
func ParseWeight(s string) Weight {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bold", "bolder", "700", "800", "900":
		return WeightBold
	case "medium", "semibold", "500", "600":
		return WeightMedium
	default:
		return WeightRegular
	}
}

type fontKey struct {
	family string
	weight Weight
}

// FontRegistry resolves a family and weight to a parsed OpenType font.
// Faces are not safe for concurrent use, so callers get a new one per render.
type FontRegistry struct {
	mu    sync.RWMutex
	fonts map[fontKey]*opentype.Font
	names map[string]string
}

// NewFontRegistry returns a registry holding the Go font family.
func NewFontRegistry() (*FontRegistry, error) {
	r := &FontRegistry{
		fonts: make(map[fontKey]*opentype.Font),
		names: make(map[string]string),
	}
	builtin := map[Weight][]byte{
		WeightRegular: goregular.TTF,
		WeightMedium:  gomedium.TTF,
		WeightBold:    gobold.TTF,
	}
	for w, data := range builtin {
		if err := r.Register(FallbackFamily, w, data); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register parses data and stores it under family and weight.
func (r *FontRegistry) Register(family string, weight Weight, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s %s: %w", family, weight, err)
	}
	key := familyKey(family)
	if key == "" {
		return fmt.Errorf("font family is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fonts[fontKey{family: key, weight: weight}] = f
	if _, ok := r.names[key]; !ok {
		r.names[key] = strings.TrimSpace(family)
	}
	return nil
}

// LoadDir registers every .ttf and .otf file in dir named Family-Weight.ext.
// Files without a weight suffix register as regular.
func (r *FontRegistry) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read font dir: %w", err)
	}
	loaded := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".ttf" && ext != ".otf" {
			continue
		}
		base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		family, weight := base, WeightRegular
		if i := strings.LastIndex(base, "-"); i > 0 {
			family, weight = base[:i], ParseWeight(base[i+1:])
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return loaded, fmt.Errorf("read font %s: %w", e.Name(), err)
		}
		if err := r.Register(family, weight, data); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}

// Resolve picks the closest registered font: the exact weight of the family,
// then the family's regular cut, then the fallback family.
func (r *FontRegistry) Resolve(family string, weight Weight) *opentype.Font {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := familyKey(family)
	if f, ok := r.fonts[fontKey{family: key, weight: weight}]; ok {
		return f
	}
	if f, ok := r.fonts[fontKey{family: key, weight: WeightRegular}]; ok {
		return f
	}
	fb := familyKey(FallbackFamily)
	if f, ok := r.fonts[fontKey{family: fb, weight: weight}]; ok {
		return f
	}
	return r.fonts[fontKey{family: fb, weight: WeightRegular}]
}

// NewFace opens a face at size pixels. The caller must Close it.
func (r *FontRegistry) NewFace(family string, weight Weight, size float64) (font.Face, error) {
	f := r.Resolve(family, weight)
	if f == nil {
		return nil, fmt.Errorf("no font registered for %q", family)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("open face %s: %w", family, err)
	}
	return face, nil
}

// Families lists the families a design may name: the editor families plus
// everything registered.
func (r *FontRegistry) Families() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, name := range KnownFamilies {
		seen[familyKey(name)] = true
		out = append(out, name)
	}
	var extra []string
	for key, name := range r.names {
		if !seen[key] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// familyKey folds "Open Sans", "OpenSans" and "open_sans" together.
func familyKey(family string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(family) {
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			b.WriteRune(c)
		}
	}
	return b.String()
}
