package enums

import "fmt"

// GlobalDiscountApplication selects which aggregate buckets a scenario-wide
// discount applies to.
type GlobalDiscountApplication string

const (
	GlobalDiscountNone    GlobalDiscountApplication = "none"
	GlobalDiscountBoth    GlobalDiscountApplication = "both"
	GlobalDiscountMonthly GlobalDiscountApplication = "monthly"
	GlobalDiscountOneTime GlobalDiscountApplication = "onetime"
)

var validGlobalDiscountApplications = []GlobalDiscountApplication{
	GlobalDiscountNone,
	GlobalDiscountBoth,
	GlobalDiscountMonthly,
	GlobalDiscountOneTime,
}

// String implements fmt.Stringer.
func (g GlobalDiscountApplication) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GlobalDiscountApplication.
func (g GlobalDiscountApplication) IsValid() bool {
	for _, candidate := range validGlobalDiscountApplications {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGlobalDiscountApplication converts raw input into a GlobalDiscountApplication.
func ParseGlobalDiscountApplication(value string) (GlobalDiscountApplication, error) {
	for _, candidate := range validGlobalDiscountApplications {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid global discount application %q", value)
}
