package enums

import "fmt"

// OutboxEventType enumerates the domain events emitted via the outbox.
type OutboxEventType string

const (
	OutboxEventInviteCreated   OutboxEventType = "invite.created"
	OutboxEventScenarioCreated OutboxEventType = "scenario.created"
	OutboxEventReportGenerated OutboxEventType = "report.generated"
)

var validOutboxEventTypes = []OutboxEventType{
	OutboxEventInviteCreated,
	OutboxEventScenarioCreated,
	OutboxEventReportGenerated,
}

// String implements fmt.Stringer.
func (o OutboxEventType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OutboxEventType.
func (o OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into an OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	OutboxAggregateInvite   OutboxAggregateType = "invite"
	OutboxAggregateScenario OutboxAggregateType = "scenario"
	OutboxAggregateReport   OutboxAggregateType = "report"
)

var validOutboxAggregateTypes = []OutboxAggregateType{
	OutboxAggregateInvite,
	OutboxAggregateScenario,
	OutboxAggregateReport,
}

// String implements fmt.Stringer.
func (o OutboxAggregateType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OutboxAggregateType.
func (o OutboxAggregateType) IsValid() bool {
	for _, candidate := range validOutboxAggregateTypes {
		if candidate == o {
			return true
		}
	}
	return false
}
