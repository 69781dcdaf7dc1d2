package catalog_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-portfolio-backend/internal/catalog"
	"agency-portfolio-backend/internal/memstore"
	"agency-portfolio-backend/internal/models"
)

const placeholder = "https://picsum.photos/800/600"

var errOutage = errors.New("connection refused")

func newService(t *testing.T, opts ...catalog.Option) (*catalog.Service, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	return catalog.NewService(store, placeholder, opts...), store
}

func TestCreateProject_PlaceholderWhenNoImages(t *testing.T) {
	svc, _ := newService(t)

	p, err := svc.CreateProject(context.Background(), models.NewProject{
		Title:          "Landing",
		ImageURLs:      []string{"", "  "},
		ShowInCarousel: true,
		ShowInGrid:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{placeholder}, p.ImageURLs)
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestCreateProject_EmptyTitle(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.CreateProject(context.Background(), models.NewProject{Title: " "})
	assert.ErrorIs(t, err, catalog.ErrEmptyTitle)
}

type uploaderFunc func(ctx context.Context, dataURL string) (string, error)

func (f uploaderFunc) UploadDataURL(ctx context.Context, dataURL string) (string, error) {
	return f(ctx, dataURL)
}

func TestCreateProject_UploadsDataURLs(t *testing.T) {
	var uploaded []string
	svc, _ := newService(t, catalog.WithUploader(uploaderFunc(func(_ context.Context, d string) (string, error) {
		uploaded = append(uploaded, d)
		return "https://cdn.example/projects/1.png", nil
	})))

	p, err := svc.CreateProject(context.Background(), models.NewProject{
		Title:     "Shop",
		ImageURLs: []string{"https://img.example/a.jpg", "data:image/png;base64,iVBORw0KGgo="},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img.example/a.jpg", "https://cdn.example/projects/1.png"}, p.ImageURLs)
	assert.Len(t, uploaded, 1)
}

func TestCreateProject_UploadFailure(t *testing.T) {
	svc, store := newService(t, catalog.WithUploader(uploaderFunc(func(context.Context, string) (string, error) {
		return "", errOutage
	})))

	_, err := svc.CreateProject(context.Background(), models.NewProject{
		Title:     "Shop",
		ImageURLs: []string{"data:image/png;base64,iVBORw0KGgo="},
	})
	assert.ErrorIs(t, err, errOutage)

	projects, _ := store.ListProjects(context.Background())
	assert.Empty(t, projects)
}

func TestProjects_NewestFirst(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		_, err := svc.CreateProject(ctx, models.NewProject{Title: title})
		require.NoError(t, err)
	}

	projects := svc.Projects(ctx)
	require.Len(t, projects, 3)
	assert.Equal(t, "third", projects[0].Title)
	assert.Equal(t, "first", projects[2].Title)
}

func TestToggleZone_TwiceRestores(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, models.NewProject{Title: "A", ShowInCarousel: true, ShowInGrid: true})
	require.NoError(t, err)

	require.NoError(t, svc.ToggleZone(ctx, p.ID, models.ZoneCarousel))
	assert.Empty(t, svc.ProjectsIn(ctx, models.ZoneCarousel))
	assert.Len(t, svc.ProjectsIn(ctx, models.ZoneGrid), 1)

	require.NoError(t, svc.ToggleZone(ctx, p.ID, models.ZoneCarousel))
	assert.Len(t, svc.ProjectsIn(ctx, models.ZoneCarousel), 1)
}

func TestToggleZone_MissingProjectIsNoop(t *testing.T) {
	svc, _ := newService(t)
	assert.NoError(t, svc.ToggleZone(context.Background(), "missing", models.ZoneGrid))
}

// Concurrent toggles of the same flag race: the final state depends on
// interleaving, but the call itself must never fail.
func TestToggleZone_ConcurrentDoesNotFail(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p, err := svc.CreateProject(ctx, models.NewProject{Title: "A", ShowInGrid: true})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.ToggleZone(ctx, p.ID, models.ZoneGrid))
		}()
	}
	wg.Wait()
}

func TestCategories_AddRemoveKeepsProjects(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	cats, err := svc.AddCategory(ctx, "Web")
	require.NoError(t, err)
	assert.Equal(t, []string{"Web"}, cats)

	_, err = svc.CreateProject(ctx, models.NewProject{Title: "Shop", Category: "Web"})
	require.NoError(t, err)

	assert.Empty(t, svc.RemoveCategory(ctx, "Web"))
	projects := svc.Projects(ctx)
	require.Len(t, projects, 1)
	assert.Equal(t, "Web", projects[0].Category)
}

func TestAddCategory_DuplicateReturnsCurrentList(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.AddCategory(ctx, "Web")
	require.NoError(t, err)
	cats, err := svc.AddCategory(ctx, "Web")
	require.NoError(t, err)
	assert.Equal(t, []string{"Web"}, cats)
}

func TestAddCategory_Blank(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.AddCategory(context.Background(), "  ")
	assert.ErrorIs(t, err, catalog.ErrEmptyCategory)
}

func TestReads_DegradeToEmpty(t *testing.T) {
	svc, store := newService(t)
	store.Fail["ListProjects"] = errOutage
	store.Fail["ListCategories"] = errOutage
	ctx := context.Background()

	assert.NotNil(t, svc.Projects(ctx))
	assert.Empty(t, svc.Projects(ctx))
	assert.NotNil(t, svc.Categories(ctx))
	assert.Empty(t, svc.Categories(ctx))
	assert.Empty(t, svc.ProjectsIn(ctx, models.ZoneGrid))
}

func TestDeleteProject_ErrorSurfaces(t *testing.T) {
	svc, store := newService(t)
	store.Fail["DeleteProject"] = errOutage
	assert.ErrorIs(t, svc.DeleteProject(context.Background(), "x"), errOutage)
}
