package configfields

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchantiq/pricewise-backend/pkg/db"
	"github.com/merchantiq/pricewise-backend/pkg/db/models"
	pkgerrors "github.com/merchantiq/pricewise-backend/pkg/errors"
)

type stubRepo struct {
	created []*models.ConfigurationDefinition
	findFn  func(ctx context.Context, id uuid.UUID) (*models.ConfigurationDefinition, error)
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }
func (s *stubRepo) Create(ctx context.Context, definition *models.ConfigurationDefinition) error {
	s.created = append(s.created, definition)
	return nil
}
func (s *stubRepo) Update(ctx context.Context, definition *models.ConfigurationDefinition) error {
	return nil
}
func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.ConfigurationDefinition, error) {
	if s.findFn != nil {
		return s.findFn(ctx, id)
	}
	return nil, nil
}
func (s *stubRepo) List(ctx context.Context, activeOnly bool) ([]models.ConfigurationDefinition, error) {
	return nil, nil
}
func (s *stubRepo) ReplaceFields(ctx context.Context, definitionID uuid.UUID, fields []models.ConfigurationField) error {
	return nil
}

func TestCreateDefinitionAssignsFieldOrder(t *testing.T) {
	repo := &stubRepo{}
	svc, err := NewService(ServiceParams{Repo: repo, DB: &db.Client{}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.CreateDefinition(context.Background(), CreateDefinitionInput{
		Name:     "Merchant Profile",
		IsActive: true,
		Fields: []FieldInput{
			{FieldKey: "industry", Label: "Industry"},
			{FieldKey: "volume", Label: "Monthly Volume"},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	fields := repo.created[0].Fields
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	for i, field := range fields {
		if field.OrderIndex != i {
			t.Errorf("field %q order = %d, want %d", field.FieldKey, field.OrderIndex, i)
		}
	}
}

func TestCreateDefinitionRejectsDuplicateFieldKeys(t *testing.T) {
	svc, err := NewService(ServiceParams{Repo: &stubRepo{}, DB: &db.Client{}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.CreateDefinition(context.Background(), CreateDefinitionInput{
		Name: "Merchant Profile",
		Fields: []FieldInput{
			{FieldKey: "industry", Label: "Industry"},
			{FieldKey: "industry", Label: "Industry Again"},
		},
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetDefinitionNotFound(t *testing.T) {
	svc, err := NewService(ServiceParams{Repo: &stubRepo{}, DB: &db.Client{}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.GetDefinition(context.Background(), uuid.New())
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
