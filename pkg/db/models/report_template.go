package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportTemplate is a user-authored report layout: an ordered list of named
// sections. The is_legacy row is the placeholder created when reports are
// generated before any real template exists.
type ReportTemplate struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string            `gorm:"column:name;not null"`
	IsLegacy  bool              `gorm:"column:is_legacy;not null;default:false"`
	Sections  []TemplateSection `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE"`
	CreatedBy *uuid.UUID        `gorm:"column:created_by;type:uuid"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
