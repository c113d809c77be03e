package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/merchantiq/pricewise-backend/pkg/types"
)

func tierTable(t *testing.T) types.PriceTiers {
	t.Helper()
	return types.PriceTiers{
		{Threshold: 100, UnitPrice: decimal.RequireFromString("0.50")},
		{Threshold: 500, UnitPrice: decimal.RequireFromString("0.40")},
		{Threshold: 1000, UnitPrice: decimal.RequireFromString("0.30")},
	}
}

func TestTierTotalBands(t *testing.T) {
	cases := []struct {
		qty  int
		want string
	}{
		{0, "0"},
		{50, "25"},       // inside first band
		{100, "50"},      // exactly first threshold
		{101, "50.4"},    // one unit into second band
		{500, "210"},     // 100×0.50 + 400×0.40
		{1000, "360"},    // + 500×0.30
		{1200, "420"},    // overflow priced at last rate
	}
	for _, tc := range cases {
		got := TierTotal(tierTable(t), tc.qty)
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("TierTotal(qty=%d) = %s, want %s", tc.qty, got, tc.want)
		}
	}
}

func TestTierTotalMonotonicInQuantity(t *testing.T) {
	tiers := tierTable(t)
	prev := decimal.Zero
	for qty := 0; qty <= 1500; qty += 37 {
		got := TierTotal(tiers, qty)
		if got.LessThan(prev) {
			t.Fatalf("total decreased at qty=%d: %s < %s", qty, got, prev)
		}
		prev = got
	}
}

func TestTierTotalUnsortedInput(t *testing.T) {
	tiers := types.PriceTiers{
		{Threshold: 500, UnitPrice: decimal.RequireFromString("0.40")},
		{Threshold: 100, UnitPrice: decimal.RequireFromString("0.50")},
	}
	got := TierTotal(tiers, 250)
	if !got.Equal(decimal.RequireFromString("110")) {
		t.Fatalf("expected tiers sorted before banding, got %s", got)
	}
}

func TestTierTotalEmptyTableIsZero(t *testing.T) {
	if got := TierTotal(nil, 42); !got.IsZero() {
		t.Fatalf("expected 0 for empty tier table, got %s", got)
	}
}
