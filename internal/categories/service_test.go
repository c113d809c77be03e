package categories

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
	findFn  func(ctx context.Context, id uuid.UUID) (*models.Category, error)
	countFn func(ctx context.Context, categoryID uuid.UUID) (int64, error)
	deleted []uuid.UUID
	ordered map[uuid.UUID]int
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }
func (s *stubRepo) Create(ctx context.Context, category *models.Category) error {
	return nil
}
func (s *stubRepo) Update(ctx context.Context, category *models.Category) error {
	return nil
}
func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}
func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if s.findFn != nil {
		return s.findFn(ctx, id)
	}
	return nil, nil
}
func (s *stubRepo) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return nil, nil
}
func (s *stubRepo) List(ctx context.Context) ([]models.Category, error) {
	return nil, nil
}
func (s *stubRepo) SetOrderIndex(ctx context.Context, id uuid.UUID, orderIndex int) (int64, error) {
	if s.ordered == nil {
		s.ordered = map[uuid.UUID]int{}
	}
	s.ordered[id] = orderIndex
	return 1, nil
}
func (s *stubRepo) CountServices(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	if s.countFn != nil {
		return s.countFn(ctx, categoryID)
	}
	return 0, nil
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo, DB: db.NewWithConn(openTestDB(t))})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestNewServiceRequiresDeps(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected error when repo missing")
	}
	if _, err := NewService(ServiceParams{Repo: &stubRepo{}}); err == nil {
		t.Fatal("expected error when db client missing")
	}
}

func TestUpdateCategoryNotFound(t *testing.T) {
	svc, err := NewService(ServiceParams{Repo: &stubRepo{}, DB: &db.Client{}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.UpdateCategory(context.Background(), uuid.New(), UpdateCategoryInput{})
	if err == nil {
		t.Fatal("expected not found error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestReorderCategoriesRejectsEmptyBatch(t *testing.T) {
	svc, err := NewService(ServiceParams{Repo: &stubRepo{}, DB: &db.Client{}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	err = svc.ReorderCategories(context.Background(), nil)
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestDeleteCategoryRefusedWhileReferenced(t *testing.T) {
	category := &models.Category{ID: uuid.New(), Slug: "processing", Name: "Processing"}
	repo := &stubRepo{
		findFn: func(ctx context.Context, id uuid.UUID) (*models.Category, error) {
			return category, nil
		},
		countFn: func(ctx context.Context, categoryID uuid.UUID) (int64, error) {
			return 3, nil
		},
	}
	svc := newTestService(t, repo)

	err := svc.DeleteCategory(context.Background(), category.ID)
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
	if len(repo.deleted) != 0 {
		t.Fatalf("expected no deletion, got %v", repo.deleted)
	}
}

func TestDeleteCategoryRemovesUnreferenced(t *testing.T) {
	category := &models.Category{ID: uuid.New(), Slug: "addons", Name: "Add-ons"}
	repo := &stubRepo{
		findFn: func(ctx context.Context, id uuid.UUID) (*models.Category, error) {
			return category, nil
		},
	}
	svc := newTestService(t, repo)

	if err := svc.DeleteCategory(context.Background(), category.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != category.ID {
		t.Fatalf("expected category deleted, got %v", repo.deleted)
	}
}
