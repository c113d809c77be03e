package models

import (
	"time"

	"github.com/google/uuid"
)

// ConfigurationDefinition is an admin-defined field rendered in the client
// configuration bar and used to filter report content.
type ConfigurationDefinition struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string               `gorm:"column:name;not null;uniqueIndex"`
	IsActive  bool                 `gorm:"column:is_active;not null;default:true"`
	Fields    []ConfigurationField `gorm:"foreignKey:DefinitionID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// ConfigurationField is one sub-field of a configuration definition.
type ConfigurationField struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DefinitionID uuid.UUID `gorm:"column:definition_id;type:uuid;not null"`
	FieldKey     string    `gorm:"column:field_key;not null"`
	Label        string    `gorm:"column:label;not null"`
	OrderIndex   int       `gorm:"column:order_index;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
