package reports

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchantiq/pricewise-backend/internal/scenarios"
	"github.com/merchantiq/pricewise-backend/pkg/config"
	"github.com/merchantiq/pricewise-backend/pkg/db"
	"github.com/merchantiq/pricewise-backend/pkg/db/models"
	"github.com/merchantiq/pricewise-backend/pkg/enums"
	pkgerrors "github.com/merchantiq/pricewise-backend/pkg/errors"
	"github.com/merchantiq/pricewise-backend/pkg/outbox"
	"github.com/merchantiq/pricewise-backend/pkg/pagination"
)

type stubRepo struct {
	templates       map[uuid.UUID]*models.ReportTemplate
	legacy          *models.ReportTemplate
	createTplErrs   []error
	createdTpls     []*models.ReportTemplate
	createdReports  []*models.GeneratedReport
	legacyAfterFail *models.ReportTemplate
}

func newStubRepo() *stubRepo {
	return &stubRepo{templates: map[uuid.UUID]*models.ReportTemplate{}}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) CreateTemplate(ctx context.Context, template *models.ReportTemplate) error {
	if len(s.createTplErrs) > 0 {
		err := s.createTplErrs[0]
		s.createTplErrs = s.createTplErrs[1:]
		if err != nil {
			s.legacy = s.legacyAfterFail
			return err
		}
	}
	if template.ID == uuid.Nil {
		template.ID = uuid.New()
	}
	s.createdTpls = append(s.createdTpls, template)
	s.templates[template.ID] = template
	if template.IsLegacy {
		s.legacy = template
	}
	return nil
}

func (s *stubRepo) UpdateTemplate(ctx context.Context, template *models.ReportTemplate) error {
	s.templates[template.ID] = template
	return nil
}

func (s *stubRepo) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	delete(s.templates, id)
	return nil
}

func (s *stubRepo) FindTemplateByID(ctx context.Context, id uuid.UUID) (*models.ReportTemplate, error) {
	return s.templates[id], nil
}

func (s *stubRepo) FindLegacyTemplate(ctx context.Context) (*models.ReportTemplate, error) {
	return s.legacy, nil
}

func (s *stubRepo) ListTemplates(ctx context.Context) ([]models.ReportTemplate, error) {
	return nil, nil
}

func (s *stubRepo) ReplaceSections(ctx context.Context, templateID uuid.UUID, sections []models.TemplateSection) error {
	return nil
}

func (s *stubRepo) CreateReport(ctx context.Context, report *models.GeneratedReport) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	s.createdReports = append(s.createdReports, report)
	return nil
}

func (s *stubRepo) FindReportByID(ctx context.Context, id uuid.UUID) (*models.GeneratedReport, error) {
	return nil, nil
}

func (s *stubRepo) ListReports(ctx context.Context, params ListReportsQuery) ([]models.GeneratedReport, *pagination.Cursor, error) {
	return nil, nil, nil
}

type stubScenarios struct {
	lastInput scenarios.CreateScenarioInput
	err       error
}

func (s *stubScenarios) CreateScenario(ctx context.Context, input scenarios.CreateScenarioInput) (*scenarios.ScenarioResult, error) {
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &scenarios.ScenarioResult{
		Scenario: &models.Scenario{ID: uuid.New()},
		Summary:  recurringSummary(),
	}, nil
}

type stubPreviews struct {
	saved []string
	err   error
}

func (s *stubPreviews) Save(ctx context.Context, reportID *uuid.UUID, html string) (*models.ReportPreview, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.saved = append(s.saved, html)
	return &models.ReportPreview{ID: uuid.New()}, nil
}

type stubConfigs struct {
	definitions []models.ConfigurationDefinition
	err         error
}

func (s *stubConfigs) ListDefinitions(ctx context.Context, activeOnly bool) ([]models.ConfigurationDefinition, error) {
	return s.definitions, s.err
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func newTestService(t *testing.T, repo Repository, creator scenarioCreator, previews previewSaver) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:      repo,
		DB:        &db.Client{},
		Scenarios: creator,
		Previews:  previews,
		Configs:   &stubConfigs{},
		Outbox:    &stubEmitter{},
		Config:    config.ReportsConfig{MaxSections: 10},
		Version:   "1.4.0",
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{Repo: newStubRepo(), DB: &db.Client{}})
	if err == nil {
		t.Fatal("expected error for missing scenario creator")
	}
}

func TestGenerateReportUnknownTemplate(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubScenarios{}, &stubPreviews{})

	missing := uuid.New()
	_, err := svc.GenerateReport(context.Background(), GenerateReportInput{
		TemplateID: &missing,
		Items:      []scenarios.ItemInput{{ServiceID: uuid.New(), Quantity: 1}},
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestGenerateReportAnonymousSkipsReportRecord(t *testing.T) {
	repo := newStubRepo()
	previews := &stubPreviews{}
	svc := newTestService(t, repo, &stubScenarios{}, previews)

	result, err := svc.GenerateReport(context.Background(), GenerateReportInput{
		Items: []scenarios.ItemInput{{ServiceID: uuid.New(), Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.HTML == "" {
		t.Fatal("expected rendered document")
	}
	if result.Report != nil || len(repo.createdReports) != 0 {
		t.Fatal("report record should be skipped without client, project, and simulator")
	}
	if result.Preview == nil || len(previews.saved) != 1 {
		t.Fatal("preview should still be stored")
	}
}

func TestGenerateReportSurvivesPreviewFailure(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubScenarios{}, &stubPreviews{err: errors.New("redis down")})

	result, err := svc.GenerateReport(context.Background(), GenerateReportInput{
		Items: []scenarios.ItemInput{{ServiceID: uuid.New(), Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.HTML == "" {
		t.Fatal("expected rendered document despite preview failure")
	}
	if result.Preview != nil {
		t.Fatal("preview should be nil after storage failure")
	}
}

func TestGenerateReportPropagatesScenarioErrors(t *testing.T) {
	badSelection := pkgerrors.New(pkgerrors.CodeValidation, "unknown service in selection")
	svc := newTestService(t, newStubRepo(), &stubScenarios{err: badSelection}, &stubPreviews{})

	_, err := svc.GenerateReport(context.Background(), GenerateReportInput{
		Items: []scenarios.ItemInput{{ServiceID: uuid.New(), Quantity: 1}},
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveTemplateIDCreatesLegacyPlaceholder(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubScenarios{}, &stubPreviews{})

	id, err := svc.resolveTemplateID(context.Background(), repo, nil, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if repo.legacy == nil || repo.legacy.ID != id {
		t.Fatal("expected legacy placeholder to be created")
	}
	if repo.legacy.Name != legacyTemplateName || !repo.legacy.IsLegacy {
		t.Fatalf("unexpected placeholder: %+v", repo.legacy)
	}

	// Second resolution reuses the row.
	again, err := svc.resolveTemplateID(context.Background(), repo, nil, nil)
	if err != nil || again != id {
		t.Fatalf("resolve again = %s, %v; want %s", again, err, id)
	}
	if len(repo.createdTpls) != 1 {
		t.Fatalf("created %d templates, want 1", len(repo.createdTpls))
	}
}

func TestResolveTemplateIDRecoversFromInsertRace(t *testing.T) {
	winner := &models.ReportTemplate{ID: uuid.New(), Name: legacyTemplateName, IsLegacy: true}
	repo := newStubRepo()
	repo.createTplErrs = []error{errors.New(`duplicate key value violates unique constraint "ux_report_templates_legacy"`)}
	repo.legacyAfterFail = winner

	svc := newTestService(t, repo, &stubScenarios{}, &stubPreviews{})

	id, err := svc.resolveTemplateID(context.Background(), repo, nil, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != winner.ID {
		t.Fatalf("resolved %s, want the winning row %s", id, winner.ID)
	}
}

func TestCreateTemplateRejectsTooManySections(t *testing.T) {
	svc, err := NewService(ServiceParams{
		Repo:      newStubRepo(),
		DB:        &db.Client{},
		Scenarios: &stubScenarios{},
		Outbox:    &stubEmitter{},
		Config:    config.ReportsConfig{MaxSections: 2},
		Version:   "1.4.0",
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	body := "text"
	sections := make([]SectionInput, 3)
	for i := range sections {
		sections[i] = SectionInput{SectionType: enums.SectionTypeText, Title: "Section", BodyText: &body}
	}

	_, err = svc.CreateTemplate(context.Background(), CreateTemplateInput{Name: "Big", Sections: sections})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateTemplateRequiresSectionBody(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubScenarios{}, &stubPreviews{})

	_, err := svc.CreateTemplate(context.Background(), CreateTemplateInput{
		Name:     "Proposal",
		Sections: []SectionInput{{SectionType: enums.SectionTypeHTML, Title: "Intro"}},
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateTemplateRejectsUnknownSectionType(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubScenarios{}, &stubPreviews{})

	_, err := svc.CreateTemplate(context.Background(), CreateTemplateInput{
		Name:     "Proposal",
		Sections: []SectionInput{{SectionType: enums.SectionType("markdown"), Title: "Intro"}},
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteLegacyTemplateRefused(t *testing.T) {
	repo := newStubRepo()
	legacy := &models.ReportTemplate{ID: uuid.New(), Name: legacyTemplateName, IsLegacy: true}
	repo.templates[legacy.ID] = legacy
	svc := newTestService(t, repo, &stubScenarios{}, &stubPreviews{})

	err := svc.DeleteTemplate(context.Background(), legacy.ID)
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func TestListReportsRejectsInvalidCursor(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubScenarios{}, &stubPreviews{})

	_, err := svc.ListReports(context.Background(), ListReportsParams{Cursor: "not-a-cursor"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
