package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/skillbridge/tutoring-backend/internal/models"
	"github.com/skillbridge/tutoring-backend/internal/services"
)

// CategoryHandler handles category HTTP requests
type CategoryHandler struct {
	categories *services.CategoryService
	logger     *logrus.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categories *services.CategoryService, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, logger: logger}
}

// ListCategories returns every category
// GET /api/v1/categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Categories retrieved successfully", categories)
}

// CreateCategory adds a category
// POST /api/v1/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context, _ models.Identity) {
	var req models.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categories.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, "Category created successfully", category)
}

// UpdateCategory changes a category's name or description
// PUT /api/v1/categories/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context, _ models.Identity) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req models.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categories.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Category updated successfully", category)
}

// DeleteCategory removes a category
// DELETE /api/v1/categories/:id
func (h *CategoryHandler) DeleteCategory(c *gin.Context, _ models.Identity) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Category deleted successfully", nil)
}
