package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/merchantiq/pricewise-backend/internal/analytics"
	"github.com/merchantiq/pricewise-backend/internal/scenarios"
	"github.com/merchantiq/pricewise-backend/pkg/config"
	"github.com/merchantiq/pricewise-backend/pkg/db"
	"github.com/merchantiq/pricewise-backend/pkg/db/models"
	"github.com/merchantiq/pricewise-backend/pkg/enums"
	pkgerrors "github.com/merchantiq/pricewise-backend/pkg/errors"
	"github.com/merchantiq/pricewise-backend/pkg/logger"
	"github.com/merchantiq/pricewise-backend/pkg/metrics"
	"github.com/merchantiq/pricewise-backend/pkg/outbox"
	"github.com/merchantiq/pricewise-backend/pkg/outbox/payloads"
	"github.com/merchantiq/pricewise-backend/pkg/pagination"
	"github.com/merchantiq/pricewise-backend/pkg/types"
)

const legacyTemplateName = "Legacy Report"

type scenarioCreator interface {
	CreateScenario(ctx context.Context, input scenarios.CreateScenarioInput) (*scenarios.ScenarioResult, error)
}

type previewSaver interface {
	Save(ctx context.Context, reportID *uuid.UUID, html string) (*models.ReportPreview, error)
}

type configLister interface {
	ListDefinitions(ctx context.Context, activeOnly bool) ([]models.ConfigurationDefinition, error)
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ServiceParams groups dependencies for the report service.
type ServiceParams struct {
	Repo      Repository
	DB        *db.Client
	Scenarios scenarioCreator
	Previews  previewSaver
	Configs   configLister
	Outbox    outboxEmitter
	Analytics *analytics.Writer
	Metrics   *metrics.SimulatorMetrics
	Config    config.ReportsConfig
	Version   string
	Logger    *logger.Logger
}

// Service generates reports and manages report templates.
type Service struct {
	repo      Repository
	db        *db.Client
	scenarios scenarioCreator
	previews  previewSaver
	configs   configLister
	outbox    outboxEmitter
	analytics *analytics.Writer
	metrics   *metrics.SimulatorMetrics
	assembler *Assembler
	cfg       config.ReportsConfig
	version   string
	logg      *logger.Logger
}

// NewService builds a report service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.DB == nil {
		return nil, errors.New("db client is required")
	}
	if params.Scenarios == nil {
		return nil, errors.New("scenario creator is required")
	}
	if params.Outbox == nil {
		return nil, errors.New("outbox emitter is required")
	}
	if params.Version == "" {
		return nil, errors.New("platform version is required")
	}
	return &Service{
		repo:      params.Repo,
		db:        params.DB,
		scenarios: params.Scenarios,
		previews:  params.Previews,
		configs:   params.Configs,
		outbox:    params.Outbox,
		analytics: params.Analytics,
		metrics:   params.Metrics,
		assembler: NewAssembler(),
		cfg:       params.Config,
		version:   params.Version,
		logg:      params.Logger,
	}, nil
}

// GenerateReportInput holds the validated payload to generate a report.
type GenerateReportInput struct {
	TemplateID     *uuid.UUID
	SimulatorID    *uuid.UUID
	ClientName     string
	ProjectName    string
	PreparedBy     *string
	Items          []scenarios.ItemInput
	GlobalDiscount types.GlobalDiscount
	CreatedBy      *uuid.UUID
	ActorRole      string
}

// GenerateResult carries the rendered document and whatever side effects
// succeeded. Report and Preview are nil when their soft-persistence skipped
// or failed.
type GenerateResult struct {
	HTML     string
	Scenario *models.Scenario
	Report   *models.GeneratedReport
	Preview  *models.ReportPreview
}

// reportSnapshot is the pricing payload frozen into generated_reports.
type reportSnapshot struct {
	ScenarioID     uuid.UUID            `json:"scenario_id"`
	GlobalDiscount types.GlobalDiscount `json:"global_discount"`
	Items          []reportSnapshotItem `json:"items"`
	OneTimeTotal   string               `json:"one_time_total"`
	MonthlyTotal   string               `json:"monthly_total"`
	YearlyTotal    string               `json:"yearly_total"`
	TotalProject   string               `json:"total_project_cost"`
	Savings        string               `json:"savings"`
	SavingsRate    string               `json:"savings_rate"`
}

type reportSnapshotItem struct {
	ServiceName string `json:"service_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
	IsFree      bool   `json:"is_free"`
	IsOneTime   bool   `json:"is_one_time"`
}

// GenerateReport prices the selection, renders the document, and applies the
// soft side effects (report record, preview, analytics). Only a failure to
// produce any document at all is returned as an error.
func (s *Service) GenerateReport(ctx context.Context, input GenerateReportInput) (*GenerateResult, error) {
	start := time.Now()

	var tmpl *models.ReportTemplate
	if input.TemplateID != nil {
		loaded, err := s.repo.FindTemplateByID(ctx, *input.TemplateID)
		if err != nil {
			return nil, fmt.Errorf("loading template: %w", err)
		}
		if loaded == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "template not found")
		}
		tmpl = loaded
	}

	templateLabel := "legacy"
	if tmpl != nil {
		templateLabel = tmpl.Name
	}

	scenarioResult, err := s.scenarios.CreateScenario(ctx, scenarios.CreateScenarioInput{
		Source:         enums.ScenarioSourceSimulator,
		SimulatorID:    input.SimulatorID,
		ClientName:     input.ClientName,
		ProjectName:    input.ProjectName,
		PreparedBy:     input.PreparedBy,
		Items:          input.Items,
		GlobalDiscount: input.GlobalDiscount,
		CreatedBy:      input.CreatedBy,
		ActorRole:      input.ActorRole,
	})
	if err != nil {
		s.metrics.IncReport(templateLabel, "error")
		return nil, err
	}

	var softErrs error

	var configFields []models.ConfigurationDefinition
	if s.configs != nil {
		configFields, err = s.configs.ListDefinitions(ctx, true)
		if err != nil {
			softErrs = multierr.Append(softErrs, fmt.Errorf("listing config fields: %w", err))
			configFields = nil
		}
	}

	meta := ReportMeta{
		ClientName:      input.ClientName,
		ProjectName:     input.ProjectName,
		CompanyName:     s.cfg.CompanyName,
		ContactEmail:    s.cfg.ContactEmail,
		PlatformVersion: s.version,
		GeneratedAt:     time.Now().UTC(),
	}
	if input.PreparedBy != nil {
		meta.PreparedBy = *input.PreparedBy
	}

	html, err := s.assembler.Render(AssembleInput{
		Meta:           meta,
		Template:       tmpl,
		Summary:        scenarioResult.Summary,
		GlobalDiscount: input.GlobalDiscount,
		ConfigFields:   configFields,
	})
	if err != nil {
		s.metrics.IncReport(templateLabel, "error")
		return nil, err
	}

	result := &GenerateResult{HTML: html, Scenario: scenarioResult.Scenario}

	if input.ClientName != "" && input.ProjectName != "" && input.SimulatorID != nil {
		report, err := s.persistReport(ctx, input, tmpl, scenarioResult)
		if err != nil {
			softErrs = multierr.Append(softErrs, fmt.Errorf("persisting report: %w", err))
		} else {
			result.Report = report
		}
	}

	if s.previews != nil {
		var reportID *uuid.UUID
		if result.Report != nil {
			reportID = &result.Report.ID
		}
		preview, err := s.previews.Save(ctx, reportID, html)
		if err != nil {
			softErrs = multierr.Append(softErrs, fmt.Errorf("saving preview: %w", err))
		} else {
			result.Preview = preview
		}
	}

	if result.Report != nil && s.analytics != nil {
		s.analytics.ReportGenerated(ctx, analytics.ReportGeneratedRecord{
			ReportID:        result.Report.ID,
			SimulatorID:     result.Report.SimulatorID,
			ClientName:      result.Report.ClientName,
			ProjectName:     result.Report.ProjectName,
			TemplateName:    templateLabel,
			PlatformVersion: s.version,
		})
	}

	outcome := "ok"
	if softErrs != nil {
		outcome = "partial"
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", softErrs.Error()), "report side effects incomplete")
		}
	}
	s.metrics.ObserveReportDuration(templateLabel, time.Since(start))
	s.metrics.IncReport(templateLabel, outcome)

	return result, nil
}

func (s *Service) persistReport(ctx context.Context, input GenerateReportInput, tmpl *models.ReportTemplate, scenarioResult *scenarios.ScenarioResult) (*models.GeneratedReport, error) {
	summary := scenarioResult.Summary
	snapshot := reportSnapshot{
		ScenarioID:     scenarioResult.Scenario.ID,
		GlobalDiscount: input.GlobalDiscount,
		OneTimeTotal:   summary.OneTimeFinal.StringFixed(2),
		MonthlyTotal:   summary.MonthlyFinal.StringFixed(2),
		YearlyTotal:    summary.YearlyTotal.StringFixed(2),
		TotalProject:   summary.TotalProject.StringFixed(2),
		Savings:        summary.Savings.StringFixed(2),
		SavingsRate:    summary.SavingsRate.StringFixed(6),
	}
	for _, line := range summary.Lines {
		snapshot.Items = append(snapshot.Items, reportSnapshotItem{
			ServiceName: line.Item.Name,
			Quantity:    line.Item.Quantity,
			UnitPrice:   line.Item.UnitPrice.StringFixed(2),
			LineTotal:   line.Total.StringFixed(2),
			IsFree:      line.Item.IsFree,
			IsOneTime:   line.IsOneTime,
		})
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("marshalling snapshot: %w", err)
	}

	var report *models.GeneratedReport
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		templateID, err := s.resolveTemplateID(ctx, repo, tmpl, input.CreatedBy)
		if err != nil {
			return err
		}

		scenarioID := scenarioResult.Scenario.ID
		report = &models.GeneratedReport{
			ScenarioID:      &scenarioID,
			TemplateID:      templateID,
			SimulatorID:     *input.SimulatorID,
			ClientName:      input.ClientName,
			ProjectName:     input.ProjectName,
			PreparedBy:      input.PreparedBy,
			PlatformVersion: s.version,
			Snapshot:        payload,
			CreatedBy:       input.CreatedBy,
		}
		if err := repo.CreateReport(ctx, report); err != nil {
			return fmt.Errorf("creating report record: %w", err)
		}

		var actor *outbox.ActorRef
		if input.CreatedBy != nil {
			actor = &outbox.ActorRef{UserID: *input.CreatedBy, Role: input.ActorRole}
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventReportGenerated,
			AggregateType: enums.OutboxAggregateReport,
			AggregateID:   report.ID,
			Actor:         actor,
			Data: payloads.ReportGeneratedEvent{
				ReportID:        report.ID,
				ScenarioID:      report.ScenarioID,
				TemplateID:      report.TemplateID,
				SimulatorID:     report.SimulatorID,
				ClientName:      report.ClientName,
				ProjectName:     report.ProjectName,
				PlatformVersion: report.PlatformVersion,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// resolveTemplateID returns the template to attribute the report to, creating
// the shared legacy placeholder row on first use.
func (s *Service) resolveTemplateID(ctx context.Context, repo Repository, tmpl *models.ReportTemplate, createdBy *uuid.UUID) (uuid.UUID, error) {
	if tmpl != nil {
		return tmpl.ID, nil
	}

	legacy, err := repo.FindLegacyTemplate(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("loading legacy template: %w", err)
	}
	if legacy != nil {
		return legacy.ID, nil
	}

	placeholder := &models.ReportTemplate{
		Name:      legacyTemplateName,
		IsLegacy:  true,
		CreatedBy: createdBy,
	}
	if err := repo.CreateTemplate(ctx, placeholder); err != nil {
		// Lost the race to another generation; the partial unique index
		// guarantees a single legacy row, so reread it.
		if db.IsUniqueViolation(err, "ux_report_templates_legacy") {
			legacy, findErr := repo.FindLegacyTemplate(ctx)
			if findErr != nil || legacy == nil {
				return uuid.Nil, fmt.Errorf("creating legacy template: %w", err)
			}
			return legacy.ID, nil
		}
		return uuid.Nil, fmt.Errorf("creating legacy template: %w", err)
	}
	return placeholder.ID, nil
}

// SectionInput describes one template section in creation/update payloads.
type SectionInput struct {
	SectionType enums.SectionType
	Title       string
	BodyHTML    *string
	BodyText    *string
}

// CreateTemplateInput holds the validated payload to create a template.
type CreateTemplateInput struct {
	Name      string
	Sections  []SectionInput
	CreatedBy *uuid.UUID
}

// UpdateTemplateInput holds optional mutation values for a template.
type UpdateTemplateInput struct {
	Name     *string
	Sections *[]SectionInput
}

// ListReportsParams captures list/filter/pagination inputs.
type ListReportsParams struct {
	SimulatorID *uuid.UUID
	CreatedBy   *uuid.UUID
	Cursor      string
	Limit       int
}

// ReportListResult is a single page of generated reports.
type ReportListResult struct {
	Reports    []models.GeneratedReport
	NextCursor string
}

// CreateTemplate inserts a template with its ordered sections.
func (s *Service) CreateTemplate(ctx context.Context, input CreateTemplateInput) (*models.ReportTemplate, error) {
	if err := s.validateSections(input.Sections); err != nil {
		return nil, err
	}

	template := &models.ReportTemplate{
		Name:      input.Name,
		Sections:  buildSections(uuid.Nil, input.Sections),
		CreatedBy: input.CreatedBy,
	}
	if err := s.repo.CreateTemplate(ctx, template); err != nil {
		return nil, fmt.Errorf("creating template: %w", err)
	}
	return template, nil
}

// UpdateTemplate applies the provided fields. Passing Sections replaces the
// whole section list atomically. The legacy placeholder cannot be edited.
func (s *Service) UpdateTemplate(ctx context.Context, id uuid.UUID, input UpdateTemplateInput) (*models.ReportTemplate, error) {
	if input.Sections != nil {
		if err := s.validateSections(*input.Sections); err != nil {
			return nil, err
		}
	}

	var updated *models.ReportTemplate
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		template, err := repo.FindTemplateByID(ctx, id)
		if err != nil {
			return fmt.Errorf("loading template: %w", err)
		}
		if template == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "template not found")
		}
		if template.IsLegacy {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "legacy template cannot be edited")
		}

		if input.Name != nil {
			template.Name = *input.Name
		}
		if err := repo.UpdateTemplate(ctx, template); err != nil {
			return fmt.Errorf("updating template: %w", err)
		}

		if input.Sections != nil {
			sections := buildSections(template.ID, *input.Sections)
			if err := repo.ReplaceSections(ctx, template.ID, sections); err != nil {
				return fmt.Errorf("replacing sections: %w", err)
			}
			template.Sections = sections
		}

		updated = template
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTemplate removes a template. The legacy placeholder stays.
func (s *Service) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	template, err := s.repo.FindTemplateByID(ctx, id)
	if err != nil {
		return fmt.Errorf("loading template: %w", err)
	}
	if template == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "template not found")
	}
	if template.IsLegacy {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "legacy template cannot be deleted")
	}
	return s.repo.DeleteTemplate(ctx, id)
}

// GetTemplate loads one template with ordered sections.
func (s *Service) GetTemplate(ctx context.Context, id uuid.UUID) (*models.ReportTemplate, error) {
	template, err := s.repo.FindTemplateByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading template: %w", err)
	}
	if template == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "template not found")
	}
	return template, nil
}

// ListTemplates returns every template, newest first.
func (s *Service) ListTemplates(ctx context.Context) ([]models.ReportTemplate, error) {
	return s.repo.ListTemplates(ctx)
}

// GetReport loads one generated report record.
func (s *Service) GetReport(ctx context.Context, id uuid.UUID) (*models.GeneratedReport, error) {
	report, err := s.repo.FindReportByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading report: %w", err)
	}
	if report == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "report not found")
	}
	return report, nil
}

// ListReports returns a page of generated reports plus an opaque next cursor.
func (s *Service) ListReports(ctx context.Context, params ListReportsParams) (*ReportListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	reports, next, err := s.repo.ListReports(ctx, ListReportsQuery{
		SimulatorID: params.SimulatorID,
		CreatedBy:   params.CreatedBy,
		Limit:       params.Limit,
		Cursor:      cursor,
	})
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}

	result := &ReportListResult{Reports: reports}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *Service) validateSections(sections []SectionInput) error {
	maxSections := s.cfg.MaxSections
	if maxSections <= 0 {
		maxSections = 40
	}
	if len(sections) > maxSections {
		return pkgerrors.New(pkgerrors.CodeValidation, "too many sections").
			WithDetails(map[string]int{"max_sections": maxSections})
	}
	for _, section := range sections {
		if !section.SectionType.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid section type")
		}
		if section.Title == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "section title is required")
		}
		switch section.SectionType {
		case enums.SectionTypeHTML:
			if section.BodyHTML == nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "html sections require body_html")
			}
		case enums.SectionTypeText:
			if section.BodyText == nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "text sections require body_text")
			}
		}
	}
	return nil
}

func buildSections(templateID uuid.UUID, inputs []SectionInput) []models.TemplateSection {
	sections := make([]models.TemplateSection, 0, len(inputs))
	for i, input := range inputs {
		section := models.TemplateSection{
			SectionType: input.SectionType,
			Title:       input.Title,
			BodyHTML:    input.BodyHTML,
			BodyText:    input.BodyText,
			OrderIndex:  i,
		}
		if templateID != uuid.Nil {
			section.TemplateID = templateID
		}
		sections = append(sections, section)
	}
	return sections
}
