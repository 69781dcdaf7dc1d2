package supabase

import (
	"context"
	"fmt"

	"github.com/supabase-community/postgrest-go"

	"agency-portfolio-backend/internal/catalog"
	"agency-portfolio-backend/internal/models"
)

// CatalogRepository maps the projects and categories tables.
type CatalogRepository struct {
	client *Client
}

func NewCatalogRepository(client *Client) *CatalogRepository {
	return &CatalogRepository{client: client}
}

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]string, error) {
	var rows []models.CategoryRow
	_, err := r.client.Supabase.From(tableCategories).
		Select("name", "", false).
		ExecuteToWithContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	return names, nil
}

func (r *CatalogRepository) InsertCategory(ctx context.Context, name string) error {
	_, _, err := r.client.Supabase.From(tableCategories).
		Insert([]models.CategoryRow{{Name: name}}, false, "", "minimal", "").
		ExecuteWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

func (r *CatalogRepository) DeleteCategory(ctx context.Context, name string) error {
	_, _, err := r.client.Supabase.From(tableCategories).
		Delete("minimal", "").
		Eq("name", name).
		ExecuteWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func (r *CatalogRepository) ListProjects(ctx context.Context) ([]models.Project, error) {
	var rows []models.ProjectRow
	_, err := r.client.Supabase.From(tableProjects).
		Select("*", "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteToWithContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects := make([]models.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, row.ToProject())
	}
	return projects, nil
}

func (r *CatalogRepository) InsertProject(ctx context.Context, p models.NewProject) (*models.Project, error) {
	var rows []models.ProjectRow
	_, err := r.client.Supabase.From(tableProjects).
		Insert([]models.ProjectRow{models.NewProjectRow(p)}, false, "", "representation", "").
		ExecuteToWithContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("failed to insert project: no row returned")
	}

	project := rows[0].ToProject()
	return &project, nil
}

func (r *CatalogRepository) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var rows []models.ProjectRow
	_, err := r.client.Supabase.From(tableProjects).
		Select("*", "", false).
		Eq("id", id).
		ExecuteToWithContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("project %s: %w", id, catalog.ErrProjectNotFound)
	}

	project := rows[0].ToProject()
	return &project, nil
}

func (r *CatalogRepository) UpdateVisibility(ctx context.Context, id string, patch models.VisibilityPatch) error {
	update := map[string]interface{}{patch.Zone.Column(): patch.Value}
	_, _, err := r.client.Supabase.From(tableProjects).
		Update(update, "minimal", "").
		Eq("id", id).
		ExecuteWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update project visibility: %w", err)
	}
	return nil
}

func (r *CatalogRepository) DeleteProject(ctx context.Context, id string) error {
	_, _, err := r.client.Supabase.From(tableProjects).
		Delete("minimal", "").
		Eq("id", id).
		ExecuteWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

var _ catalog.Repository = (*CatalogRepository)(nil)
