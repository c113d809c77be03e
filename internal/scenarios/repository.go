package scenarios

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchantiq/pricewise-backend/pkg/db/models"
	"github.com/merchantiq/pricewise-backend/pkg/enums"
	"github.com/merchantiq/pricewise-backend/pkg/pagination"
)

// Repository handles scenario persistence. Scenarios are append-only; there
// are no update or delete paths.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, scenario *models.Scenario) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Scenario, error)
	List(ctx context.Context, params ListScenariosQuery) ([]models.Scenario, *pagination.Cursor, error)
}

// ListScenariosQuery configures scenario list queries.
type ListScenariosQuery struct {
	Source      *enums.ScenarioSource
	SimulatorID *uuid.UUID
	CreatedBy   *uuid.UUID
	Limit       int
	Cursor      *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a scenario repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, scenario *models.Scenario) error {
	return r.db.WithContext(ctx).Create(scenario).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Scenario, error) {
	var scenario models.Scenario
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		First(&scenario, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &scenario, nil
}

func (r *repository) List(ctx context.Context, params ListScenariosQuery) ([]models.Scenario, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Scenario{})
	if params.Source != nil {
		query = query.Where("source = ?", *params.Source)
	}
	if params.SimulatorID != nil {
		query = query.Where("simulator_id = ?", *params.SimulatorID)
	}
	if params.CreatedBy != nil {
		query = query.Where("created_by = ?", *params.CreatedBy)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var scenarios []models.Scenario
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&scenarios).Error; err != nil {
		return nil, nil, err
	}

	if len(scenarios) > limit {
		next := scenarios[limit]
		scenarios = scenarios[:limit]
		return scenarios, &pagination.Cursor{
			CreatedAt: next.CreatedAt,
			ID:        next.ID,
		}, nil
	}

	return scenarios, nil, nil
}
