package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"2.5", "$2.50"},
		{"500", "$500.00"},
		{"1234.56", "$1,234.56"},
		{"1000000", "$1,000,000.00"},
		{"-42.1", "-$42.10"},
	}
	for _, tc := range cases {
		amount, err := decimal.NewFromString(tc.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.in, err)
		}
		if got := FormatPrice(amount); got != tc.want {
			t.Errorf("FormatPrice(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
