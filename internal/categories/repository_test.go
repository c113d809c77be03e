package categories

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/merchantiq/pricewise-backend/pkg/db/models"
)

func mustCreateTestCategory(t *testing.T, tx *gorm.DB, orderIndex int) *models.Category {
	t.Helper()
	category := &models.Category{
		ID:         uuid.New(),
		Slug:       fmt.Sprintf("pw-test-%s", uuid.NewString()),
		Name:       fmt.Sprintf("Category %d", orderIndex),
		OrderIndex: orderIndex,
	}
	if err := tx.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

func mustCreateTestService(t *testing.T, tx *gorm.DB, categoryID uuid.UUID) *models.ServiceItem {
	t.Helper()
	item := &models.ServiceItem{
		ID:         uuid.New(),
		CategoryID: categoryID,
		Name:       fmt.Sprintf("Service %s", uuid.NewString()),
		Unit:       "per month",
		UnitPrice:  decimal.RequireFromString("10.00"),
		IsActive:   true,
	}
	if err := tx.Create(item).Error; err != nil {
		t.Fatalf("create service item: %v", err)
	}
	return item
}

func TestRepositoryFindByIDMissingReturnsNil(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	defer tx.Rollback()

	repo := NewRepository(tx)
	got, err := repo.FindByID(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRepositoryListOrdersByOrderIndex(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	defer tx.Rollback()

	repo := NewRepository(tx)
	second := mustCreateTestCategory(t, tx, 2)
	first := mustCreateTestCategory(t, tx, 1)

	categories, err := repo.List(context.Background())
	require.NoError(t, err)

	positions := map[uuid.UUID]int{}
	for i, c := range categories {
		positions[c.ID] = i
	}
	require.Less(t, positions[first.ID], positions[second.ID])
}

func TestRepositoryCountServices(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	defer tx.Rollback()

	repo := NewRepository(tx)
	category := mustCreateTestCategory(t, tx, 0)
	mustCreateTestService(t, tx, category.ID)
	mustCreateTestService(t, tx, category.ID)

	count, err := repo.CountServices(context.Background(), category.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
}

func TestRepositorySetOrderIndexReportsMissingRows(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	defer tx.Rollback()

	repo := NewRepository(tx)
	category := mustCreateTestCategory(t, tx, 5)

	affected, err := repo.SetOrderIndex(context.Background(), category.ID, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	affected, err = repo.SetOrderIndex(context.Background(), uuid.New(), 0)
	require.NoError(t, err)
	require.Zero(t, affected)
}
