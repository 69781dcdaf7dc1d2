// Package catalog is the data access layer for projects and categories.
//
// Reads degrade to empty results and log the provider error. Writes the
// caller has to react to (create, delete) return the error.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"agency-portfolio-backend/internal/models"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrEmptyCategory   = errors.New("category name is empty")
	ErrEmptyTitle      = errors.New("project title is empty")
)

// Repository is the provider-facing side of the catalogue.
type Repository interface {
	ListCategories(ctx context.Context) ([]string, error)
	InsertCategory(ctx context.Context, name string) error
	DeleteCategory(ctx context.Context, name string) error

	// ListProjects returns projects ordered by creation time, newest first.
	ListProjects(ctx context.Context) ([]models.Project, error)
	InsertProject(ctx context.Context, p models.NewProject) (*models.Project, error)
	// GetProject returns ErrProjectNotFound when no row matches.
	GetProject(ctx context.Context, id string) (*models.Project, error)
	UpdateVisibility(ctx context.Context, id string, patch models.VisibilityPatch) error
	DeleteProject(ctx context.Context, id string) error
}

// ImageUploader turns inline data URLs into stored public URLs.
type ImageUploader interface {
	UploadDataURL(ctx context.Context, dataURL string) (string, error)
}

// SummaryCache stores the rendered catalogue summary.
type SummaryCache interface {
	GetSummary(ctx context.Context) (string, bool)
	SetSummary(ctx context.Context, summary string)
	Invalidate(ctx context.Context)
}

type Service struct {
	repo        Repository
	uploader    ImageUploader
	cache       SummaryCache
	placeholder string
	log         zerolog.Logger
}

type Option func(*Service)

func WithUploader(u ImageUploader) Option {
	return func(s *Service) { s.uploader = u }
}

func WithSummaryCache(c SummaryCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(repo Repository, placeholderImageURL string, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		placeholder: placeholderImageURL,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Categories(ctx context.Context) []string {
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("error fetching categories")
		return []string{}
	}
	if cats == nil {
		return []string{}
	}
	return cats
}

// AddCategory writes the category and returns the provider's fresh list.
func (s *Service) AddCategory(ctx context.Context, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyCategory
	}
	if err := s.repo.InsertCategory(ctx, name); err != nil {
		s.log.Error().Err(err).Str("category", name).Msg("error adding category")
	}
	return s.Categories(ctx), nil
}

// RemoveCategory deletes the category and returns the provider's fresh list.
// Projects tagged with the category are left as they are.
func (s *Service) RemoveCategory(ctx context.Context, name string) []string {
	if err := s.repo.DeleteCategory(ctx, name); err != nil {
		s.log.Error().Err(err).Str("category", name).Msg("error removing category")
	}
	return s.Categories(ctx)
}

func (s *Service) Projects(ctx context.Context) []models.Project {
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("error fetching projects")
		return []models.Project{}
	}
	if projects == nil {
		return []models.Project{}
	}
	return projects
}

// ProjectsIn returns the projects visible in the zone, in catalogue order.
func (s *Service) ProjectsIn(ctx context.Context, zone models.Zone) []models.Project {
	all := s.Projects(ctx)
	out := make([]models.Project, 0, len(all))
	for _, p := range all {
		if p.Visible(zone) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Service) CreateProject(ctx context.Context, p models.NewProject) (*models.Project, error) {
	if strings.TrimSpace(p.Title) == "" {
		return nil, ErrEmptyTitle
	}

	images := make([]string, 0, len(p.ImageURLs))
	for _, img := range p.ImageURLs {
		if strings.TrimSpace(img) == "" {
			continue
		}
		if s.uploader != nil && strings.HasPrefix(img, "data:") {
			url, err := s.uploader.UploadDataURL(ctx, img)
			if err != nil {
				return nil, fmt.Errorf("failed to upload project image: %w", err)
			}
			img = url
		}
		images = append(images, img)
	}
	if len(images) == 0 {
		images = []string{s.placeholder}
	}
	p.ImageURLs = images

	project, err := s.repo.InsertProject(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	s.invalidate(ctx)
	return project, nil
}

// ToggleZone flips one visibility flag by reading the current row and writing
// the negated value back. There is no version check: two concurrent toggles of
// the same project can lose an update.
func (s *Service) ToggleZone(ctx context.Context, id string, zone models.Zone) error {
	current, err := s.repo.GetProject(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return nil
		}
		return fmt.Errorf("failed to read project: %w", err)
	}

	patch := models.VisibilityPatch{Zone: zone, Value: !current.Visible(zone)}
	if err := s.repo.UpdateVisibility(ctx, id, patch); err != nil {
		return fmt.Errorf("failed to toggle %s: %w", zone, err)
	}
	return nil
}

func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
