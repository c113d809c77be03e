package reports

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchantiq/pricewise-backend/pkg/db/models"
	"github.com/merchantiq/pricewise-backend/pkg/pagination"
)

// Repository handles report template and generated report persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateTemplate(ctx context.Context, template *models.ReportTemplate) error
	UpdateTemplate(ctx context.Context, template *models.ReportTemplate) error
	DeleteTemplate(ctx context.Context, id uuid.UUID) error
	FindTemplateByID(ctx context.Context, id uuid.UUID) (*models.ReportTemplate, error)
	FindLegacyTemplate(ctx context.Context) (*models.ReportTemplate, error)
	ListTemplates(ctx context.Context) ([]models.ReportTemplate, error)
	ReplaceSections(ctx context.Context, templateID uuid.UUID, sections []models.TemplateSection) error
	CreateReport(ctx context.Context, report *models.GeneratedReport) error
	FindReportByID(ctx context.Context, id uuid.UUID) (*models.GeneratedReport, error)
	ListReports(ctx context.Context, params ListReportsQuery) ([]models.GeneratedReport, *pagination.Cursor, error)
}

// ListReportsQuery configures generated report list queries.
type ListReportsQuery struct {
	SimulatorID *uuid.UUID
	CreatedBy   *uuid.UUID
	Limit       int
	Cursor      *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a report repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateTemplate(ctx context.Context, template *models.ReportTemplate) error {
	return r.db.WithContext(ctx).Create(template).Error
}

func (r *repository) UpdateTemplate(ctx context.Context, template *models.ReportTemplate) error {
	return r.db.WithContext(ctx).Omit("Sections").Save(template).Error
}

func (r *repository) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ReportTemplate{}, "id = ?", id).Error
}

func (r *repository) FindTemplateByID(ctx context.Context, id uuid.UUID) (*models.ReportTemplate, error) {
	var template models.ReportTemplate
	if err := r.db.WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		First(&template, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

func (r *repository) FindLegacyTemplate(ctx context.Context) (*models.ReportTemplate, error) {
	var template models.ReportTemplate
	if err := r.db.WithContext(ctx).
		First(&template, "is_legacy = ?", true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

func (r *repository) ListTemplates(ctx context.Context) ([]models.ReportTemplate, error) {
	var templates []models.ReportTemplate
	if err := r.db.WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Order("created_at DESC").
		Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *repository) ReplaceSections(ctx context.Context, templateID uuid.UUID, sections []models.TemplateSection) error {
	db := r.db.WithContext(ctx)
	if err := db.Delete(&models.TemplateSection{}, "template_id = ?", templateID).Error; err != nil {
		return err
	}
	if len(sections) == 0 {
		return nil
	}
	return db.Create(&sections).Error
}

func (r *repository) CreateReport(ctx context.Context, report *models.GeneratedReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *repository) FindReportByID(ctx context.Context, id uuid.UUID) (*models.GeneratedReport, error) {
	var report models.GeneratedReport
	if err := r.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

func (r *repository) ListReports(ctx context.Context, params ListReportsQuery) ([]models.GeneratedReport, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.GeneratedReport{})
	if params.SimulatorID != nil {
		query = query.Where("simulator_id = ?", *params.SimulatorID)
	}
	if params.CreatedBy != nil {
		query = query.Where("created_by = ?", *params.CreatedBy)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var reports []models.GeneratedReport
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&reports).Error; err != nil {
		return nil, nil, err
	}

	if len(reports) > limit {
		next := reports[limit]
		reports = reports[:limit]
		return reports, &pagination.Cursor{
			CreatedAt: next.CreatedAt,
			ID:        next.ID,
		}, nil
	}

	return reports, nil, nil
}
