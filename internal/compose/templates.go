// Package compose renders quote designs: template sized canvases with a solid
// or gradient background and a block of wrapped, aligned text.
package compose

import (
	"fmt"

	"quotestudio/internal/domain"
)

// Template is a named canvas size.
type Template struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// DefaultTemplateID is used when a design names no template.
const DefaultTemplateID = "social-square"

var templates = []Template{
	{ID: "social-square", Name: "Social Square", Width: 1080, Height: 1080},
	{ID: "instagram-story", Name: "Instagram Story", Width: 1080, Height: 1920},
	{ID: "facebook-post", Name: "Facebook Post", Width: 1200, Height: 630},
	{ID: "twitter-post", Name: "Twitter Post", Width: 1024, Height: 512},
	{ID: "pinterest-pin", Name: "Pinterest Pin", Width: 1000, Height: 1500},
	{ID: "tshirt", Name: "T-Shirt", Width: 2400, Height: 3000},
	{ID: "mug", Name: "Mug", Width: 1800, Height: 1200},
	{ID: "poster", Name: "Poster", Width: 2480, Height: 3508},
}

// Templates returns a copy of the template table in display order.
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

// LookupTemplate finds a template by id.
func LookupTemplate(id string) (Template, error) {
	for _, t := range templates {
		if t.ID == id {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("unknown template %q: %w", id, domain.ErrInvalidInput)
}
