package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantiq/pricewise-backend/pkg/enums"
	"github.com/merchantiq/pricewise-backend/pkg/types"
)

// OneTimeCategorySlug marks the category whose lines always count as one-time
// charges regardless of unit.
const OneTimeCategorySlug = "setup"

// SelectedItem is one service line in a pricing session. It carries a snapshot
// of the catalog entry so a saved scenario survives later catalog edits.
type SelectedItem struct {
	ServiceID           *uuid.UUID
	Name                string
	Description         string
	CategorySlug        string
	Unit                string
	PricingType         enums.PricingType
	Tiers               types.PriceTiers
	Quantity            int
	UnitPrice           decimal.Decimal
	Discount            decimal.Decimal
	DiscountType        enums.DiscountType
	DiscountApplication enums.DiscountApplication
	IsFree              bool
}

// LineResult is the computed outcome for a single selected item.
type LineResult struct {
	Item      SelectedItem
	Subtotal  decimal.Decimal // before the per-line discount
	Total     decimal.Decimal
	IsOneTime bool
}

// CategoryTotal aggregates line totals per category slug.
type CategoryTotal struct {
	Slug  string
	Total decimal.Decimal
}

// Summary is the full result of a pricing computation.
type Summary struct {
	Lines           []LineResult
	CategoryTotals  []CategoryTotal
	OneTimeSubtotal decimal.Decimal
	MonthlySubtotal decimal.Decimal
	OneTimeFinal    decimal.Decimal
	MonthlyFinal    decimal.Decimal
	YearlyTotal     decimal.Decimal
	TotalProject    decimal.Decimal
	Undiscounted    decimal.Decimal
	Savings         decimal.Decimal
	SavingsRate     decimal.Decimal
}

// HasRecurring reports whether any line is billed monthly.
func (s Summary) HasRecurring() bool {
	for _, line := range s.Lines {
		if !line.IsOneTime {
			return true
		}
	}
	return false
}
