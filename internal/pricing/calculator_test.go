package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/merchantiq/pricewise-backend/pkg/enums"
	"github.com/merchantiq/pricewise-backend/pkg/types"
)

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", value, err)
	}
	return d
}

func fixedItem(qty int, unitPrice string) SelectedItem {
	return SelectedItem{
		Name:         "Gateway Access",
		CategorySlug: "processing",
		Unit:         "per month",
		PricingType:  enums.PricingTypeFixed,
		Quantity:     qty,
		UnitPrice:    decimal.RequireFromString(unitPrice),
		DiscountType: enums.DiscountTypePercentage,
	}
}

func TestFreeLineIsAlwaysZero(t *testing.T) {
	item := fixedItem(500, "99.99")
	item.IsFree = true
	item.Discount = dec(t, "25")
	item.DiscountApplication = enums.DiscountApplicationTotal

	if got := LineTotal(item); !got.IsZero() {
		t.Fatalf("expected 0 for free line, got %s", got)
	}
}

func TestUnitPercentageDiscount(t *testing.T) {
	item := fixedItem(4, "100")
	item.Discount = dec(t, "25")
	item.DiscountType = enums.DiscountTypePercentage
	item.DiscountApplication = enums.DiscountApplicationUnit

	// 4 × (100 × 0.75) = 300
	if got := LineTotal(item); !got.Equal(dec(t, "300")) {
		t.Fatalf("expected 300, got %s", got)
	}
}

func TestUnitDiscountFloorsAtZero(t *testing.T) {
	item := fixedItem(3, "10")
	item.Discount = dec(t, "15")
	item.DiscountType = enums.DiscountTypeFixed
	item.DiscountApplication = enums.DiscountApplicationUnit

	if got := LineTotal(item); !got.IsZero() {
		t.Fatalf("expected effective unit price floored at 0, got %s", got)
	}
}

func TestTotalFixedDiscountPerQuantity(t *testing.T) {
	item := fixedItem(5, "20")
	item.Discount = dec(t, "3")
	item.DiscountType = enums.DiscountTypeFixed
	item.DiscountApplication = enums.DiscountApplicationTotal

	// max(0, 5×20 − 3×5) = 85
	if got := LineTotal(item); !got.Equal(dec(t, "85")) {
		t.Fatalf("expected 85, got %s", got)
	}
}

func TestTieredSubtotalUsesTierResolver(t *testing.T) {
	item := SelectedItem{
		Name:         "Card Transactions",
		CategorySlug: "processing",
		Unit:         "per transaction",
		PricingType:  enums.PricingTypeTiered,
		Quantity:     250,
		UnitPrice:    dec(t, "0.50"),
		Tiers: types.PriceTiers{
			{Threshold: 100, UnitPrice: dec(t, "0.50")},
			{Threshold: 500, UnitPrice: dec(t, "0.40")},
		},
	}

	// 100 × 0.50 + 150 × 0.40 = 110
	if got := LineTotal(item); !got.Equal(dec(t, "110")) {
		t.Fatalf("expected 110, got %s", got)
	}
}

func TestGlobalDiscountNoneLeavesSubtotalsUnchanged(t *testing.T) {
	items := []SelectedItem{fixedItem(10, "5")}
	withNone := Compute(items, types.GlobalDiscount{
		Value:       dec(t, "50"),
		Type:        enums.DiscountTypePercentage,
		Application: enums.GlobalDiscountNone,
	})
	without := Compute(items, types.GlobalDiscount{})

	if !withNone.OneTimeFinal.Equal(without.OneTimeFinal) || !withNone.MonthlyFinal.Equal(without.MonthlyFinal) {
		t.Fatalf("application=none must not change totals: %+v vs %+v", withNone, without)
	}
}

func TestYearlyAndProjectInvariants(t *testing.T) {
	items := []SelectedItem{
		fixedItem(3, "40"),
		{
			Name:         "Terminal Install",
			CategorySlug: OneTimeCategorySlug,
			Unit:         "one-time",
			PricingType:  enums.PricingTypeFixed,
			Quantity:     2,
			UnitPrice:    dec(t, "150"),
		},
	}
	summary := Compute(items, types.GlobalDiscount{
		Value:       dec(t, "10"),
		Type:        enums.DiscountTypePercentage,
		Application: enums.GlobalDiscountBoth,
	})

	if !summary.YearlyTotal.Equal(summary.MonthlyFinal.Mul(dec(t, "12"))) {
		t.Fatalf("yearly %s != 12 × monthly %s", summary.YearlyTotal, summary.MonthlyFinal)
	}
	if !summary.TotalProject.Equal(summary.OneTimeFinal.Add(summary.YearlyTotal)) {
		t.Fatalf("project total %s != one-time %s + yearly %s",
			summary.TotalProject, summary.OneTimeFinal, summary.YearlyTotal)
	}
}

func TestSavingsRateZeroWhenUndiscountedZero(t *testing.T) {
	item := fixedItem(0, "0")
	summary := Compute([]SelectedItem{item}, types.GlobalDiscount{})

	if !summary.SavingsRate.IsZero() {
		t.Fatalf("expected savings rate 0, got %s", summary.SavingsRate)
	}
}

func TestSetupScenarioExample(t *testing.T) {
	items := []SelectedItem{{
		Name:         "Onboarding",
		CategorySlug: OneTimeCategorySlug,
		Unit:         "per location",
		PricingType:  enums.PricingTypeFixed,
		Quantity:     10,
		UnitPrice:    dec(t, "50"),
	}}
	summary := Compute(items, types.GlobalDiscount{})

	if !summary.OneTimeSubtotal.Equal(dec(t, "500")) {
		t.Fatalf("one-time subtotal = %s, want 500", summary.OneTimeSubtotal)
	}
	if !summary.MonthlySubtotal.IsZero() {
		t.Fatalf("monthly subtotal = %s, want 0", summary.MonthlySubtotal)
	}
	if !summary.YearlyTotal.IsZero() {
		t.Fatalf("yearly = %s, want 0", summary.YearlyTotal)
	}
	if !summary.TotalProject.Equal(dec(t, "500")) {
		t.Fatalf("project total = %s, want 500", summary.TotalProject)
	}
}

func TestMonthlyGlobalDiscountExample(t *testing.T) {
	items := []SelectedItem{fixedItem(100, "2")}
	summary := Compute(items, types.GlobalDiscount{
		Value:       dec(t, "10"),
		Type:        enums.DiscountTypePercentage,
		Application: enums.GlobalDiscountMonthly,
	})

	if !summary.MonthlyFinal.Equal(dec(t, "180")) {
		t.Fatalf("monthly final = %s, want 180", summary.MonthlyFinal)
	}
	if !summary.YearlyTotal.Equal(dec(t, "2160")) {
		t.Fatalf("yearly = %s, want 2160", summary.YearlyTotal)
	}
	if !summary.TotalProject.Equal(dec(t, "2160")) {
		t.Fatalf("project total = %s, want 2160", summary.TotalProject)
	}
	if !summary.Savings.Equal(dec(t, "20")) {
		t.Fatalf("savings = %s, want 20", summary.Savings)
	}
}

func TestCategoryTotalsAggregate(t *testing.T) {
	items := []SelectedItem{
		fixedItem(2, "10"),
		fixedItem(1, "30"),
		{
			Name:         "Install",
			CategorySlug: OneTimeCategorySlug,
			Unit:         "one-time",
			PricingType:  enums.PricingTypeFixed,
			Quantity:     1,
			UnitPrice:    dec(t, "99"),
		},
	}
	summary := Compute(items, types.GlobalDiscount{})

	if len(summary.CategoryTotals) != 2 {
		t.Fatalf("expected 2 category buckets, got %d", len(summary.CategoryTotals))
	}
	for _, ct := range summary.CategoryTotals {
		switch ct.Slug {
		case "processing":
			if !ct.Total.Equal(dec(t, "50")) {
				t.Errorf("processing total = %s, want 50", ct.Total)
			}
		case OneTimeCategorySlug:
			if !ct.Total.Equal(dec(t, "99")) {
				t.Errorf("setup total = %s, want 99", ct.Total)
			}
		default:
			t.Errorf("unexpected category %q", ct.Slug)
		}
	}
}
