package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchantiq/pricewise-backend/pkg/db/models"
	"github.com/merchantiq/pricewise-backend/pkg/pagination"
)

// Repository handles service catalog persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.ServiceItem) error
	Update(ctx context.Context, item *models.ServiceItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ServiceItem, error)
	List(ctx context.Context, params ListServicesQuery) ([]models.ServiceItem, *pagination.Cursor, error)
	ListAllActive(ctx context.Context) ([]models.ServiceItem, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.ServiceItem, error)
}

// ListServicesQuery configures service list queries.
type ListServicesQuery struct {
	CategoryID *uuid.UUID
	IsActive   *bool
	Tag        *string
	Limit      int
	Cursor     *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.ServiceItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) Update(ctx context.Context, item *models.ServiceItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ServiceItem{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ServiceItem, error) {
	var item models.ServiceItem
	if err := r.db.WithContext(ctx).
		Preload("Category").
		First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) List(ctx context.Context, params ListServicesQuery) ([]models.ServiceItem, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.ServiceItem{}).Preload("Category")
	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}
	if params.IsActive != nil {
		query = query.Where("is_active = ?", *params.IsActive)
	}
	if params.Tag != nil {
		query = query.Where("? = ANY(tags)", *params.Tag)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var items []models.ServiceItem
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&items).Error; err != nil {
		return nil, nil, err
	}

	if len(items) > limit {
		next := items[limit]
		items = items[:limit]
		return items, &pagination.Cursor{
			CreatedAt: next.CreatedAt,
			ID:        next.ID,
		}, nil
	}

	return items, nil, nil
}

func (r *repository) ListAllActive(ctx context.Context) ([]models.ServiceItem, error) {
	var items []models.ServiceItem
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.ServiceItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.ServiceItem
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id IN ?", ids).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
