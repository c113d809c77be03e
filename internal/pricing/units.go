package pricing

import "strings"

// oneTimeUnits are unit labels billed once rather than monthly.
var oneTimeUnits = map[string]struct{}{
	"one-time":     {},
	"one time":     {},
	"setup":        {},
	"installation": {},
	"project":      {},
	"migration":    {},
	"training":     {},
}

// IsOneTimeUnit classifies a unit label as a one-time charge. Matching is
// case-insensitive and ignores surrounding whitespace.
func IsOneTimeUnit(unit string) bool {
	_, ok := oneTimeUnits[strings.ToLower(strings.TrimSpace(unit))]
	return ok
}
