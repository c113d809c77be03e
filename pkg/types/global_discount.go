package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/merchantiq/pricewise-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// GlobalDiscount is the scenario-wide discount applied on top of per-line
// discounts. Application selects the aggregate buckets it reduces.
type GlobalDiscount struct {
	Value       decimal.Decimal                 `json:"value"`
	Type        enums.DiscountType              `json:"type"`
	Application enums.GlobalDiscountApplication `json:"application"`
}

// None reports whether the discount is inactive for every bucket.
func (g GlobalDiscount) None() bool {
	return g.Application == "" || g.Application == enums.GlobalDiscountNone || g.Value.IsZero()
}

// MarshalValue renders the jsonb payload for the global_discount column.
func (g GlobalDiscount) MarshalValue() (driver.Value, error) {
	raw, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("marshal global discount: %w", err)
	}
	return string(raw), nil
}

// GlobalDiscountColumn wraps GlobalDiscount with the sql marshalling hooks so
// models can embed it directly.
type GlobalDiscountColumn struct {
	GlobalDiscount
}

// Value implements driver.Valuer.
func (g GlobalDiscountColumn) Value() (driver.Value, error) {
	return g.MarshalValue()
}

// Scan implements sql.Scanner.
func (g *GlobalDiscountColumn) Scan(value interface{}) error {
	if value == nil {
		*g = GlobalDiscountColumn{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported global discount type %T", value)
	}

	if len(raw) == 0 {
		*g = GlobalDiscountColumn{}
		return nil
	}
	return json.Unmarshal(raw, &g.GlobalDiscount)
}
