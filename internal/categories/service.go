package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchantiq/pricewise-backend/pkg/db"
	"github.com/merchantiq/pricewise-backend/pkg/db/models"
	pkgerrors "github.com/merchantiq/pricewise-backend/pkg/errors"
)

// ServiceParams groups dependencies for the category service.
type ServiceParams struct {
	Repo Repository
	DB   *db.Client
}

// Service orchestrates catalog category management.
type Service struct {
	repo Repository
	db   *db.Client
}

// NewService builds a category service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.DB == nil {
		return nil, errors.New("db client is required")
	}
	return &Service{repo: params.Repo, db: params.DB}, nil
}

// CreateCategoryInput holds the validated payload to create a category.
type CreateCategoryInput struct {
	Slug        string
	Name        string
	Description *string
	OrderIndex  int
}

// UpdateCategoryInput holds optional mutation values for a category.
type UpdateCategoryInput struct {
	Name        *string
	Description *string
	OrderIndex  *int
}

// CreateCategory inserts a new category. Slugs are immutable once created and
// must be unique across the catalog.
func (s *Service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.Category, error) {
	category := &models.Category{
		Slug:        input.Slug,
		Name:        input.Name,
		Description: input.Description,
		OrderIndex:  input.OrderIndex,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "ux_categories_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already exists").
				WithDetails(map[string]string{"slug": input.Slug})
		}
		return nil, fmt.Errorf("creating category: %w", err)
	}
	return category, nil
}

// UpdateCategory applies the provided fields to an existing category.
func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*models.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading category: %w", err)
	}
	if category == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}

	if input.Name != nil {
		category.Name = *input.Name
	}
	if input.Description != nil {
		category.Description = input.Description
	}
	if input.OrderIndex != nil {
		category.OrderIndex = *input.OrderIndex
	}

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("updating category: %w", err)
	}
	return category, nil
}

// DeleteCategory removes a category. Deletion is refused while any service
// still references the category; the catalog is left untouched in that case.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		category, err := repo.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("loading category: %w", err)
		}
		if category == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}

		count, err := repo.CountServices(ctx, id)
		if err != nil {
			return fmt.Errorf("counting referencing services: %w", err)
		}
		if count > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "category still has services").
				WithDetails(map[string]any{"service_count": count})
		}

		return repo.Delete(ctx, id)
	})
}

// ListCategories returns every category in display order.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.List(ctx)
}

// ReorderCategories rewrites order_index so categories appear in the given
// sequence. The whole batch is applied atomically; an unknown id aborts it.
func (s *Service) ReorderCategories(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "no category ids provided")
	}
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for position, id := range ids {
			affected, err := repo.SetOrderIndex(ctx, id, position)
			if err != nil {
				return fmt.Errorf("reordering category %s: %w", id, err)
			}
			if affected == 0 {
				return pkgerrors.New(pkgerrors.CodeNotFound, "category not found").
					WithDetails(map[string]string{"id": id.String()})
			}
		}
		return nil
	})
}
