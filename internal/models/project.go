package models

import (
	"fmt"
	"strings"
	"time"
)

// Zone is one of the display surfaces a project can appear in.
type Zone string

const (
	ZoneCarousel Zone = "carousel"
	ZoneGrid     Zone = "grid"
)

func ParseZone(s string) (Zone, error) {
	switch Zone(strings.ToLower(strings.TrimSpace(s))) {
	case ZoneCarousel:
		return ZoneCarousel, nil
	case ZoneGrid:
		return ZoneGrid, nil
	}
	return "", fmt.Errorf("unknown zone %q", s)
}

type Project struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	Description    string    `json:"description"`
	ImageURLs      []string  `json:"imageUrls"`
	ImageCaptions  []string  `json:"imageCaptions"`
	TechStack      []string  `json:"techStack"`
	DemoURL        string    `json:"demoUrl,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	ShowInCarousel bool      `json:"showInCarousel"`
	ShowInGrid     bool      `json:"showInGrid"`
}

// CaptionFor returns the caption of image i, or the project description when
// the caption list does not cover that index or the caption is blank.
func (p Project) CaptionFor(i int) string {
	if i >= 0 && i < len(p.ImageCaptions) && strings.TrimSpace(p.ImageCaptions[i]) != "" {
		return p.ImageCaptions[i]
	}
	return p.Description
}

// Visible reports the flag of the given zone.
func (p Project) Visible(zone Zone) bool {
	switch zone {
	case ZoneCarousel:
		return p.ShowInCarousel
	case ZoneGrid:
		return p.ShowInGrid
	}
	return false
}

// NewProject is a project before the provider has assigned an ID and a
// creation timestamp.
type NewProject struct {
	Title          string
	Category       string
	Description    string
	ImageURLs      []string
	ImageCaptions  []string
	TechStack      []string
	DemoURL        string
	ShowInCarousel bool
	ShowInGrid     bool
}

// VisibilityPatch carries a single flag change for one zone.
type VisibilityPatch struct {
	Zone  Zone
	Value bool
}

// ProjectRow is the provider's snake_case row shape for the projects table.
type ProjectRow struct {
	ID             string     `json:"id,omitempty"`
	Title          string     `json:"title"`
	Category       string     `json:"category"`
	Description    string     `json:"description"`
	ImageURLs      []string   `json:"image_urls"`
	ImageCaptions  []string   `json:"image_captions"`
	TechStack      []string   `json:"tech_stack"`
	DemoURL        *string    `json:"demo_url,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	ShowInCarousel *bool      `json:"show_in_carousel,omitempty"`
	ShowInGrid     *bool      `json:"show_in_grid,omitempty"`
}

// ToProject maps a row to the application shape. Absent visibility flags
// default to true.
func (r ProjectRow) ToProject() Project {
	p := Project{
		ID:             r.ID,
		Title:          r.Title,
		Category:       r.Category,
		Description:    r.Description,
		ImageURLs:      nonNil(r.ImageURLs),
		ImageCaptions:  nonNil(r.ImageCaptions),
		TechStack:      nonNil(r.TechStack),
		ShowInCarousel: true,
		ShowInGrid:     true,
	}
	if r.DemoURL != nil {
		p.DemoURL = *r.DemoURL
	}
	if r.CreatedAt != nil {
		p.CreatedAt = *r.CreatedAt
	}
	if r.ShowInCarousel != nil {
		p.ShowInCarousel = *r.ShowInCarousel
	}
	if r.ShowInGrid != nil {
		p.ShowInGrid = *r.ShowInGrid
	}
	return p
}

// NewProjectRow maps an insert request to its row shape; ID and CreatedAt are
// left to the provider.
func NewProjectRow(p NewProject) ProjectRow {
	carousel, grid := p.ShowInCarousel, p.ShowInGrid
	row := ProjectRow{
		Title:          p.Title,
		Category:       p.Category,
		Description:    p.Description,
		ImageURLs:      nonNil(p.ImageURLs),
		ImageCaptions:  nonNil(p.ImageCaptions),
		TechStack:      nonNil(p.TechStack),
		ShowInCarousel: &carousel,
		ShowInGrid:     &grid,
	}
	if p.DemoURL != "" {
		demo := p.DemoURL
		row.DemoURL = &demo
	}
	return row
}

// Column returns the row column backing the zone's flag.
func (z Zone) Column() string {
	if z == ZoneGrid {
		return "show_in_grid"
	}
	return "show_in_carousel"
}

type CategoryRow struct {
	Name string `json:"name"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
