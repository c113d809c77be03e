package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/merchantiq/pricewise-backend/pkg/enums"
	"github.com/merchantiq/pricewise-backend/pkg/types"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// LineSubtotal computes the undiscounted subtotal for a selected item. Tiered
// items with at least one tier go through the tier resolver; everything else
// is quantity times unit price.
func LineSubtotal(item SelectedItem) decimal.Decimal {
	if item.PricingType == enums.PricingTypeTiered && len(item.Tiers) > 0 {
		return TierTotal(item.Tiers, item.Quantity)
	}
	return item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// LineTotal computes the line total after the item's own discount. Free lines
// are always zero.
func LineTotal(item SelectedItem) decimal.Decimal {
	if item.IsFree {
		return decimal.Zero
	}

	subtotal := LineSubtotal(item)
	if item.Discount.IsZero() {
		return floorZero(subtotal)
	}

	if item.DiscountApplication == enums.DiscountApplicationUnit {
		effective := item.UnitPrice
		switch item.DiscountType {
		case enums.DiscountTypePercentage:
			effective = effective.Mul(decimal.NewFromInt(1).Sub(item.Discount.Div(hundred)))
		case enums.DiscountTypeFixed:
			effective = effective.Sub(item.Discount)
		}
		return floorZero(effective).Mul(decimal.NewFromInt(int64(item.Quantity)))
	}

	var amount decimal.Decimal
	switch item.DiscountType {
	case enums.DiscountTypePercentage:
		amount = subtotal.Mul(item.Discount).Div(hundred)
	case enums.DiscountTypeFixed:
		amount = item.Discount.Mul(decimal.NewFromInt(int64(item.Quantity)))
	}
	return floorZero(subtotal.Sub(amount))
}

// IsOneTime classifies a line as a one-time charge: either it sits in the
// setup category or its unit is billed once.
func IsOneTime(item SelectedItem) bool {
	return item.CategorySlug == OneTimeCategorySlug || IsOneTimeUnit(item.Unit)
}

// Compute runs the full pricing pipeline over the selected items and an
// optional global discount.
func Compute(items []SelectedItem, global types.GlobalDiscount) Summary {
	summary := Summary{
		Lines:           make([]LineResult, 0, len(items)),
		OneTimeSubtotal: decimal.Zero,
		MonthlySubtotal: decimal.Zero,
		Undiscounted:    decimal.Zero,
	}

	categoryIndex := map[string]int{}

	for _, item := range items {
		subtotal := LineSubtotal(item)
		total := LineTotal(item)
		oneTime := IsOneTime(item)

		summary.Lines = append(summary.Lines, LineResult{
			Item:      item,
			Subtotal:  subtotal,
			Total:     total,
			IsOneTime: oneTime,
		})

		summary.Undiscounted = summary.Undiscounted.Add(subtotal)
		if oneTime {
			summary.OneTimeSubtotal = summary.OneTimeSubtotal.Add(total)
		} else {
			summary.MonthlySubtotal = summary.MonthlySubtotal.Add(total)
		}

		idx, ok := categoryIndex[item.CategorySlug]
		if !ok {
			categoryIndex[item.CategorySlug] = len(summary.CategoryTotals)
			summary.CategoryTotals = append(summary.CategoryTotals, CategoryTotal{Slug: item.CategorySlug, Total: total})
		} else {
			summary.CategoryTotals[idx].Total = summary.CategoryTotals[idx].Total.Add(total)
		}
	}

	summary.OneTimeFinal = summary.OneTimeSubtotal
	summary.MonthlyFinal = summary.MonthlySubtotal

	switch global.Application {
	case enums.GlobalDiscountBoth:
		summary.OneTimeFinal = applyGlobal(summary.OneTimeSubtotal, global)
		summary.MonthlyFinal = applyGlobal(summary.MonthlySubtotal, global)
	case enums.GlobalDiscountMonthly:
		summary.MonthlyFinal = applyGlobal(summary.MonthlySubtotal, global)
	case enums.GlobalDiscountOneTime:
		summary.OneTimeFinal = applyGlobal(summary.OneTimeSubtotal, global)
	}

	summary.YearlyTotal = summary.MonthlyFinal.Mul(twelve)
	summary.TotalProject = summary.OneTimeFinal.Add(summary.YearlyTotal)

	discounted := summary.OneTimeFinal.Add(summary.MonthlyFinal)
	summary.Savings = summary.Undiscounted.Sub(discounted)
	if summary.Undiscounted.IsZero() {
		summary.SavingsRate = decimal.Zero
	} else {
		summary.SavingsRate = summary.Savings.Div(summary.Undiscounted)
	}

	return summary
}

// GlobalDiscountActive reports whether the global discount changes any total,
// used by report rendering to decide whether to show the discount block.
func GlobalDiscountActive(global types.GlobalDiscount) bool {
	return global.Application != "" &&
		global.Application != enums.GlobalDiscountNone &&
		global.Value.IsPositive()
}

func applyGlobal(subtotal decimal.Decimal, global types.GlobalDiscount) decimal.Decimal {
	var amount decimal.Decimal
	switch global.Type {
	case enums.DiscountTypePercentage:
		amount = subtotal.Mul(global.Value).Div(hundred)
	case enums.DiscountTypeFixed:
		amount = global.Value
	default:
		return subtotal
	}
	return floorZero(subtotal.Sub(amount))
}

func floorZero(value decimal.Decimal) decimal.Decimal {
	if value.IsNegative() {
		return decimal.Zero
	}
	return value
}
