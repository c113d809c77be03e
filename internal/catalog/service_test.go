package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/merchantiq/pricewise-backend/pkg/db/models"
	"github.com/merchantiq/pricewise-backend/pkg/enums"
	pkgerrors "github.com/merchantiq/pricewise-backend/pkg/errors"
	"github.com/merchantiq/pricewise-backend/pkg/pagination"
)

type stubRepo struct {
	created []*models.ServiceItem
	findFn  func(ctx context.Context, id uuid.UUID) (*models.ServiceItem, error)
	listFn  func(ctx context.Context, params ListServicesQuery) ([]models.ServiceItem, *pagination.Cursor, error)
	active  []models.ServiceItem
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }
func (s *stubRepo) Create(ctx context.Context, item *models.ServiceItem) error {
	s.created = append(s.created, item)
	return nil
}
func (s *stubRepo) Update(ctx context.Context, item *models.ServiceItem) error { return nil }
func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error             { return nil }
func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.ServiceItem, error) {
	if s.findFn != nil {
		return s.findFn(ctx, id)
	}
	return nil, nil
}
func (s *stubRepo) List(ctx context.Context, params ListServicesQuery) ([]models.ServiceItem, *pagination.Cursor, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params)
	}
	return nil, nil, nil
}
func (s *stubRepo) ListAllActive(ctx context.Context) ([]models.ServiceItem, error) {
	return s.active, nil
}
func (s *stubRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.ServiceItem, error) {
	return nil, nil
}

type stubCategories struct {
	known map[uuid.UUID]*models.Category
}

func (s *stubCategories) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.known[id], nil
}

func newTestService(t *testing.T, repo *stubRepo, cats *stubCategories) *Service {
	t.Helper()
	if cats == nil {
		cats = &stubCategories{known: map[uuid.UUID]*models.Category{}}
	}
	svc, err := NewService(ServiceParams{Repo: repo, Categories: cats})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateServiceRejectsUnknownCategory(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, nil)

	_, err := svc.CreateService(context.Background(), CreateServiceInput{
		CategoryID:  uuid.New(),
		Name:        "Gateway Access",
		Unit:        "per month",
		PricingType: enums.PricingTypeFixed,
		UnitPrice:   decimal.RequireFromString("25"),
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateServiceRequiresTiersForTieredPricing(t *testing.T) {
	categoryID := uuid.New()
	cats := &stubCategories{known: map[uuid.UUID]*models.Category{
		categoryID: {ID: categoryID, Slug: "processing", Name: "Processing"},
	}}
	svc := newTestService(t, &stubRepo{}, cats)

	_, err := svc.CreateService(context.Background(), CreateServiceInput{
		CategoryID:  categoryID,
		Name:        "Card Transactions",
		Unit:        "per transaction",
		PricingType: enums.PricingTypeTiered,
		UnitPrice:   decimal.RequireFromString("0.50"),
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateServiceNormalizesTags(t *testing.T) {
	categoryID := uuid.New()
	cats := &stubCategories{known: map[uuid.UUID]*models.Category{
		categoryID: {ID: categoryID, Slug: "processing", Name: "Processing"},
	}}
	repo := &stubRepo{}
	svc := newTestService(t, repo, cats)

	_, err := svc.CreateService(context.Background(), CreateServiceInput{
		CategoryID:  categoryID,
		Name:        "Gateway Access",
		Unit:        "per month",
		PricingType: enums.PricingTypeFixed,
		UnitPrice:   decimal.RequireFromString("25"),
		Tags:        []string{" popular ", "popular", "", "gateway"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 created item, got %d", len(repo.created))
	}
	got := repo.created[0].Tags
	want := pq.StringArray{"popular", "gateway"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("tags = %v, want %v", got, want)
	}
}

func TestListServicesInvalidCursor(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, nil)

	_, err := svc.ListServices(context.Background(), ListServicesParams{Cursor: "not-a-cursor"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListServicesReturnsEncodedCursor(t *testing.T) {
	next := pagination.Cursor{ID: uuid.New()}
	repo := &stubRepo{
		listFn: func(ctx context.Context, params ListServicesQuery) ([]models.ServiceItem, *pagination.Cursor, error) {
			return []models.ServiceItem{{ID: uuid.New()}}, &next, nil
		},
	}
	svc := newTestService(t, repo, nil)

	result, err := svc.ListServices(context.Background(), ListServicesParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.NextCursor == "" {
		t.Fatal("expected next cursor")
	}
	decoded, err := pagination.ParseCursor(result.NextCursor)
	if err != nil || decoded == nil || decoded.ID != next.ID {
		t.Fatalf("cursor did not round-trip: %v %v", decoded, err)
	}
}

func TestProjectTags(t *testing.T) {
	items := []models.ServiceItem{
		{Name: "Gateway Access", Tags: pq.StringArray{"gateway", "popular"}},
		{Name: "Fraud Screening", Tags: pq.StringArray{"popular"}},
		{Name: "Chargeback Defense", Tags: nil},
	}

	tags := ProjectTags(items)
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(tags))
	}
	if tags[0].Name != "gateway" || tags[0].UsageCount != 1 {
		t.Fatalf("unexpected first tag: %+v", tags[0])
	}
	if tags[1].Name != "popular" || tags[1].UsageCount != 2 {
		t.Fatalf("unexpected second tag: %+v", tags[1])
	}
	if len(tags[1].ServiceNames) != 2 {
		t.Fatalf("expected 2 referencing services, got %v", tags[1].ServiceNames)
	}
}
