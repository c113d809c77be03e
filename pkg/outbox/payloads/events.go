package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/merchantiq/pricewise-backend/pkg/enums"
)

// InviteCreatedEvent tells downstream systems to deliver an invitation email.
type InviteCreatedEvent struct {
	InviteID  uuid.UUID      `json:"invite_id"`
	Email     string         `json:"email"`
	Role      enums.UserRole `json:"role"`
	Token     string         `json:"token"`
	InvitedBy uuid.UUID      `json:"invited_by"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// ScenarioCreatedEvent is emitted when a pricing snapshot is saved.
type ScenarioCreatedEvent struct {
	ScenarioID  uuid.UUID            `json:"scenario_id"`
	Source      enums.ScenarioSource `json:"source"`
	ClientName  string               `json:"client_name"`
	ProjectName string               `json:"project_name"`
	ItemCount   int                  `json:"item_count"`
	TotalCost   string               `json:"total_cost"`
}

// ReportGeneratedEvent surfaces a completed report generation.
type ReportGeneratedEvent struct {
	ReportID        uuid.UUID  `json:"report_id"`
	ScenarioID      *uuid.UUID `json:"scenario_id,omitempty"`
	TemplateID      uuid.UUID  `json:"template_id"`
	SimulatorID     uuid.UUID  `json:"simulator_id"`
	ClientName      string     `json:"client_name"`
	ProjectName     string     `json:"project_name"`
	PlatformVersion string     `json:"platform_version"`
}
