package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"agency-portfolio-backend/internal/catalog"
	"agency-portfolio-backend/internal/models"
)

type ProjectsHandler struct {
	catalog *catalog.Service
}

func NewProjectsHandler(catalog *catalog.Service) *ProjectsHandler {
	return &ProjectsHandler{catalog: catalog}
}

// ListProjects godoc
// @Summary     List projects
// @Description Newest first. With zone, only projects visible in that zone.
// @Tags        projects
// @Produce     json
// @Param       zone query string false "carousel or grid"
// @Success     200 {object} models.ProjectListResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /projects [get]
func (h *ProjectsHandler) ListProjects(c *gin.Context) {
	raw := c.Query("zone")
	if raw == "" {
		c.JSON(http.StatusOK, models.ProjectListResponse{
			Projects: h.catalog.Projects(c.Request.Context()),
		})
		return
	}

	zone, err := models.ParseZone(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_zone",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.ProjectListResponse{
		Projects: h.catalog.ProjectsIn(c.Request.Context(), zone),
	})
}

// CreateProject godoc
// @Summary     Create a project
// @Description Inline data: URLs are uploaded to storage; no images falls back to the placeholder
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       request body models.CreateProjectRequest true "Project"
// @Success     201 {object} models.Project
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Security    Bearer
// @Router      /admin/projects [post]
func (h *ProjectsHandler) CreateProject(c *gin.Context) {
	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	project, err := h.catalog.CreateProject(c.Request.Context(), newProjectFromRequest(req))
	if err != nil {
		if errors.Is(err, catalog.ErrEmptyTitle) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_request",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to create project",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, project)
}

// DeleteProject godoc
// @Summary     Delete a project
// @Tags        admin
// @Param       id path string true "Project ID"
// @Success     204
// @Failure     500 {object} models.ErrorResponse
// @Security    Bearer
// @Router      /admin/projects/{id} [delete]
func (h *ProjectsHandler) DeleteProject(c *gin.Context) {
	if err := h.catalog.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to delete project",
			Message: err.Error(),
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleZone godoc
// @Summary     Toggle project visibility in a zone
// @Description Unknown project ids are a no-op
// @Tags        admin
// @Param       id   path string true "Project ID"
// @Param       zone path string true "carousel or grid"
// @Success     204
// @Failure     400 {object} models.ErrorResponse
// @Security    Bearer
// @Router      /admin/projects/{id}/zones/{zone}/toggle [post]
func (h *ProjectsHandler) ToggleZone(c *gin.Context) {
	zone, err := models.ParseZone(c.Param("zone"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_zone",
			Message: err.Error(),
		})
		return
	}

	if err := h.catalog.ToggleZone(c.Request.Context(), c.Param("id"), zone); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to toggle visibility",
			Message: err.Error(),
		})
		return
	}
	c.Status(http.StatusNoContent)
}

func newProjectFromRequest(req models.CreateProjectRequest) models.NewProject {
	return models.NewProject{
		Title:          req.Title,
		Category:       req.Category,
		Description:    req.Description,
		ImageURLs:      req.ImageURLs,
		ImageCaptions:  req.ImageCaptions,
		TechStack:      catalog.ParseTechStack(req.TechStack),
		DemoURL:        req.DemoURL,
		ShowInCarousel: req.ShowInCarousel == nil || *req.ShowInCarousel,
		ShowInGrid:     req.ShowInGrid == nil || *req.ShowInGrid,
	}
}
