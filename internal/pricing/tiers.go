package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/merchantiq/pricewise-backend/pkg/types"
)

// TierTotal prices a quantity against an ordered tier table. Each tier's
// threshold is the inclusive upper bound of its band: with tiers
// {100, $0.50}, {500, $0.40}, a quantity of 250 pays 100 units at $0.50 and
// 150 at $0.40. Units beyond the last threshold are priced at the last tier's
// rate, so the total is monotonic in quantity.
func TierTotal(tiers types.PriceTiers, quantity int) decimal.Decimal {
	if quantity <= 0 || len(tiers) == 0 {
		return decimal.Zero
	}

	sorted := tiers.Sorted()
	total := decimal.Zero
	remaining := int64(quantity)
	prevThreshold := int64(0)

	for _, tier := range sorted {
		band := int64(tier.Threshold) - prevThreshold
		if band <= 0 {
			continue
		}
		units := band
		if remaining < units {
			units = remaining
		}
		total = total.Add(tier.UnitPrice.Mul(decimal.NewFromInt(units)))
		remaining -= units
		prevThreshold = int64(tier.Threshold)
		if remaining <= 0 {
			return total
		}
	}

	// Overflow past the last band at the last tier's rate.
	last := sorted[len(sorted)-1]
	return total.Add(last.UnitPrice.Mul(decimal.NewFromInt(remaining)))
}
