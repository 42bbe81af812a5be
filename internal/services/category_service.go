package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/skillbridge/tutoring-backend/internal/database"
	"github.com/skillbridge/tutoring-backend/internal/models"
)

// CategoryService manages the subject list
type CategoryService struct {
	categories CategoryStore
	logger     *logrus.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(categories CategoryStore, logger *logrus.Logger) *CategoryService {
	return &CategoryService{categories: categories, logger: logger}
}

// List returns every category ordered by name
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

// Create adds a category with a unique name
func (s *CategoryService) Create(ctx context.Context, req models.CategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}

	category, err := s.categories.Create(ctx, name, strings.TrimSpace(req.Description))
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrCategoryNameTaken
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"category_id": category.ID, "name": name}).Info("Category created")
	return category, nil
}

// Update renames or re-describes a category
func (s *CategoryService) Update(ctx context.Context, id int64, req models.CategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}

	category, err := s.categories.Update(ctx, id, name, strings.TrimSpace(req.Description))
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrCategoryNameTaken
		}
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// Delete removes a category. Tutor links are dropped by the foreign key.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.categories.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrCategoryNotFound
	}
	s.logger.WithField("category_id", id).Info("Category deleted")
	return nil
}
