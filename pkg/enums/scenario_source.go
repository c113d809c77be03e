package enums

import "fmt"

// ScenarioSource records how a pricing scenario snapshot was produced.
type ScenarioSource string

const (
	ScenarioSourceSimulator ScenarioSource = "simulator"
	ScenarioSourceGuest     ScenarioSource = "guest"
)

var validScenarioSources = []ScenarioSource{
	ScenarioSourceSimulator,
	ScenarioSourceGuest,
}

// String implements fmt.Stringer.
func (s ScenarioSource) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ScenarioSource.
func (s ScenarioSource) IsValid() bool {
	for _, candidate := range validScenarioSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseScenarioSource converts raw input into a ScenarioSource.
func ParseScenarioSource(value string) (ScenarioSource, error) {
	for _, candidate := range validScenarioSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid scenario source %q", value)
}
