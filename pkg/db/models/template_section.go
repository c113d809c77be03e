package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/merchantiq/pricewise-backend/pkg/enums"
)

// TemplateSection is one page of a custom report template. Exactly one of
// BodyHTML/BodyText is expected depending on SectionType.
type TemplateSection struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TemplateID  uuid.UUID         `gorm:"column:template_id;type:uuid;not null"`
	SectionType enums.SectionType `gorm:"column:section_type;not null"`
	Title       string            `gorm:"column:title;not null"`
	BodyHTML    *string           `gorm:"column:body_html"`
	BodyText    *string           `gorm:"column:body_text"`
	OrderIndex  int               `gorm:"column:order_index;not null;default:0"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
