package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"agency-portfolio-backend/internal/catalog"
	"agency-portfolio-backend/internal/models"
)

type CategoriesHandler struct {
	catalog *catalog.Service
}

func NewCategoriesHandler(catalog *catalog.Service) *CategoriesHandler {
	return &CategoriesHandler{catalog: catalog}
}

// ListCategories godoc
// @Summary     List categories
// @Tags        categories
// @Produce     json
// @Success     200 {object} models.CategoryListResponse
// @Router      /categories [get]
func (h *CategoriesHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, models.CategoryListResponse{
		Categories: h.catalog.Categories(c.Request.Context()),
	})
}

// AddCategory godoc
// @Summary     Add a category
// @Description Returns the category list as stored after the write
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       request body models.CategoryRequest true "Category"
// @Success     200 {object} models.CategoryListResponse
// @Failure     400 {object} models.ErrorResponse
// @Security    Bearer
// @Router      /admin/categories [post]
func (h *CategoriesHandler) AddCategory(c *gin.Context) {
	var req models.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	categories, err := h.catalog.AddCategory(c.Request.Context(), req.Name)
	if err != nil {
		if errors.Is(err, catalog.ErrEmptyCategory) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_request",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to add category",
		})
		return
	}

	c.JSON(http.StatusOK, models.CategoryListResponse{Categories: categories})
}

// RemoveCategory godoc
// @Summary     Remove a category
// @Description Projects tagged with the category keep it
// @Tags        admin
// @Produce     json
// @Param       name path string true "Category name"
// @Success     200 {object} models.CategoryListResponse
// @Security    Bearer
// @Router      /admin/categories/{name} [delete]
func (h *CategoriesHandler) RemoveCategory(c *gin.Context) {
	c.JSON(http.StatusOK, models.CategoryListResponse{
		Categories: h.catalog.RemoveCategory(c.Request.Context(), c.Param("name")),
	})
}
