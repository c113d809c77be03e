package configfields

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchantiq/pricewise-backend/pkg/db/models"
)

// Repository handles configuration definition persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, definition *models.ConfigurationDefinition) error
	Update(ctx context.Context, definition *models.ConfigurationDefinition) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ConfigurationDefinition, error)
	List(ctx context.Context, activeOnly bool) ([]models.ConfigurationDefinition, error)
	ReplaceFields(ctx context.Context, definitionID uuid.UUID, fields []models.ConfigurationField) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a configuration repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, definition *models.ConfigurationDefinition) error {
	return r.db.WithContext(ctx).Create(definition).Error
}

func (r *repository) Update(ctx context.Context, definition *models.ConfigurationDefinition) error {
	return r.db.WithContext(ctx).Omit("Fields").Save(definition).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ConfigurationDefinition{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ConfigurationDefinition, error) {
	var definition models.ConfigurationDefinition
	if err := r.db.WithContext(ctx).
		Preload("Fields", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		First(&definition, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &definition, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]models.ConfigurationDefinition, error) {
	query := r.db.WithContext(ctx).
		Preload("Fields", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Order("name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var definitions []models.ConfigurationDefinition
	if err := query.Find(&definitions).Error; err != nil {
		return nil, err
	}
	return definitions, nil
}

func (r *repository) ReplaceFields(ctx context.Context, definitionID uuid.UUID, fields []models.ConfigurationField) error {
	db := r.db.WithContext(ctx)
	if err := db.Delete(&models.ConfigurationField{}, "definition_id = ?", definitionID).Error; err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	return db.Create(&fields).Error
}
