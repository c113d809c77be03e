package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// GeneratedReport records one report generation. Snapshot holds the pricing
// payload the report was rendered from so the document can be reproduced even
// after the catalog changes.
type GeneratedReport struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ScenarioID      *uuid.UUID      `gorm:"column:scenario_id;type:uuid"`
	TemplateID      uuid.UUID       `gorm:"column:template_id;type:uuid;not null"`
	SimulatorID     uuid.UUID       `gorm:"column:simulator_id;type:uuid;not null"`
	ClientName      string          `gorm:"column:client_name;not null"`
	ProjectName     string          `gorm:"column:project_name;not null"`
	PreparedBy      *string         `gorm:"column:prepared_by"`
	PlatformVersion string          `gorm:"column:platform_version;not null"`
	Snapshot        json.RawMessage `gorm:"column:snapshot;type:jsonb;not null"`
	CreatedBy       *uuid.UUID      `gorm:"column:created_by;type:uuid"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}
