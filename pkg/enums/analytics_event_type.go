package enums

import "fmt"

// AnalyticsEventType labels rows written to the analytics warehouse.
type AnalyticsEventType string

const (
	AnalyticsEventScenarioCreated AnalyticsEventType = "scenario_created"
	AnalyticsEventReportGenerated AnalyticsEventType = "report_generated"
	AnalyticsEventGuestSubmission AnalyticsEventType = "guest_submission"
)

var validAnalyticsEventTypes = []AnalyticsEventType{
	AnalyticsEventScenarioCreated,
	AnalyticsEventReportGenerated,
	AnalyticsEventGuestSubmission,
}

// String implements fmt.Stringer.
func (a AnalyticsEventType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AnalyticsEventType.
func (a AnalyticsEventType) IsValid() bool {
	for _, candidate := range validAnalyticsEventTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAnalyticsEventType converts raw input into an AnalyticsEventType.
func ParseAnalyticsEventType(value string) (AnalyticsEventType, error) {
	for _, candidate := range validAnalyticsEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid analytics event type %q", value)
}
