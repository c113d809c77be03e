package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// PriceTier is one band of a tiered price schedule. Threshold is the inclusive
// upper bound of the band; UnitPrice applies to units priced in this band.
type PriceTier struct {
	Threshold int             `json:"threshold"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// PriceTiers represents the jsonb price_tiers column.
type PriceTiers []PriceTier

// Value implements driver.Valuer so the slice can be persisted as jsonb.
func (p PriceTiers) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal price tiers: %w", err)
	}
	return string(raw), nil
}

// Scan implements sql.Scanner for the jsonb price_tiers column.
func (p *PriceTiers) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported price tiers type %T", value)
	}

	if len(raw) == 0 {
		*p = PriceTiers{}
		return nil
	}
	return json.Unmarshal(raw, p)
}

// Sorted returns a copy ordered by ascending threshold.
func (p PriceTiers) Sorted() PriceTiers {
	out := make(PriceTiers, len(p))
	copy(out, p)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Threshold < out[j].Threshold
	})
	return out
}
