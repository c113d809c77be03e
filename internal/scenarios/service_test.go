package scenarios

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/merchantiq/pricewise-backend/pkg/db"
	"github.com/merchantiq/pricewise-backend/pkg/db/models"
	"github.com/merchantiq/pricewise-backend/pkg/enums"
	pkgerrors "github.com/merchantiq/pricewise-backend/pkg/errors"
	"github.com/merchantiq/pricewise-backend/pkg/outbox"
	"github.com/merchantiq/pricewise-backend/pkg/pagination"
)

type stubRepo struct {
	findFn func(ctx context.Context, id uuid.UUID) (*models.Scenario, error)
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }
func (s *stubRepo) Create(ctx context.Context, scenario *models.Scenario) error {
	return nil
}
func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Scenario, error) {
	if s.findFn != nil {
		return s.findFn(ctx, id)
	}
	return nil, nil
}
func (s *stubRepo) List(ctx context.Context, params ListScenariosQuery) ([]models.Scenario, *pagination.Cursor, error) {
	return nil, nil, nil
}

type stubCatalog struct {
	items []models.ServiceItem
}

func (s *stubCatalog) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.ServiceItem, error) {
	return s.items, nil
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func newTestService(t *testing.T, repo Repository, catalog catalogReader) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:    repo,
		Catalog: catalog,
		DB:      &db.Client{},
		Outbox:  &stubEmitter{},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestResolveSelectionRequiresItems(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubCatalog{})

	_, err := svc.ResolveSelection(context.Background(), nil)
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveSelectionRejectsNegativeQuantity(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubCatalog{})

	_, err := svc.ResolveSelection(context.Background(), []ItemInput{
		{ServiceID: uuid.New(), Quantity: -1},
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveSelectionRejectsUnknownService(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubCatalog{})

	_, err := svc.ResolveSelection(context.Background(), []ItemInput{
		{ServiceID: uuid.New(), Quantity: 1},
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveSelectionSnapshotsCatalogData(t *testing.T) {
	serviceID := uuid.New()
	description := "Hosted payment gateway"
	catalog := &stubCatalog{items: []models.ServiceItem{{
		ID:          serviceID,
		Name:        "Gateway Access",
		Description: &description,
		Unit:        "per month",
		PricingType: enums.PricingTypeFixed,
		UnitPrice:   decimal.RequireFromString("25"),
		Category:    &models.Category{Slug: "processing", Name: "Processing"},
	}}}
	svc := newTestService(t, &stubRepo{}, catalog)

	selected, err := svc.ResolveSelection(context.Background(), []ItemInput{
		{ServiceID: serviceID, Quantity: 4, DiscountType: enums.DiscountTypePercentage},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(selected) != 1 {
		t.Fatalf("expected 1 line, got %d", len(selected))
	}
	line := selected[0]
	if line.Name != "Gateway Access" || line.CategorySlug != "processing" || line.Description != description {
		t.Fatalf("snapshot incomplete: %+v", line)
	}
	if !line.UnitPrice.Equal(decimal.RequireFromString("25")) {
		t.Fatalf("unit price = %s, want 25", line.UnitPrice)
	}
}

func TestCreateScenarioGuestRequiresContactEmail(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubCatalog{})

	_, err := svc.CreateScenario(context.Background(), CreateScenarioInput{
		Source: enums.ScenarioSourceGuest,
		Items:  []ItemInput{{ServiceID: uuid.New(), Quantity: 1}},
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDuplicateScenarioNotFound(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubCatalog{})

	_, err := svc.DuplicateScenario(context.Background(), uuid.New(), nil, "")
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestListScenariosInvalidCursor(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubCatalog{})

	_, err := svc.ListScenarios(context.Background(), ListScenariosParams{Cursor: "###"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
