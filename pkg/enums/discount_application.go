package enums

import "fmt"

// DiscountApplication controls whether a per-line discount reduces the unit
// price before multiplying, or the computed line subtotal.
type DiscountApplication string

const (
	DiscountApplicationUnit  DiscountApplication = "unit"
	DiscountApplicationTotal DiscountApplication = "total"
)

var validDiscountApplications = []DiscountApplication{
	DiscountApplicationUnit,
	DiscountApplicationTotal,
}

// String implements fmt.Stringer.
func (d DiscountApplication) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DiscountApplication.
func (d DiscountApplication) IsValid() bool {
	for _, candidate := range validDiscountApplications {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDiscountApplication converts raw input into a DiscountApplication.
func ParseDiscountApplication(value string) (DiscountApplication, error) {
	for _, candidate := range validDiscountApplications {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount application %q", value)
}
