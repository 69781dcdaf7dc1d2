package catalog

import (
	"context"
	"fmt"
	"strings"

	"agency-portfolio-backend/internal/models"
)

// Summarize renders one line per project for the assistant prompt.
func Summarize(projects []models.Project) string {
	lines := make([]string, 0, len(projects))
	for _, p := range projects {
		lines = append(lines, fmt.Sprintf("- %s (%s): %s. Stack: %s",
			p.Title, p.Category, p.Description, strings.Join(p.TechStack, ", ")))
	}
	return strings.Join(lines, "\n")
}

// Summary returns the catalogue summary, served from the cache when one is
// configured and warm. A failed read yields an empty summary that is not
// cached.
func (s *Service) Summary(ctx context.Context) string {
	if s.cache != nil {
		if summary, ok := s.cache.GetSummary(ctx); ok {
			return summary
		}
	}
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("error fetching projects for summary")
		return ""
	}
	summary := Summarize(projects)
	if s.cache != nil {
		s.cache.SetSummary(ctx, summary)
	}
	return summary
}

// ParseTechStack splits the admin form's comma-separated input.
func ParseTechStack(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
