package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups services in the catalog. Slug is stable and referenced by
// scenario snapshots; the "setup" slug marks one-time charges.
type Category struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug        string    `gorm:"column:slug;not null;uniqueIndex"`
	Name        string    `gorm:"column:name;not null"`
	Description *string   `gorm:"column:description"`
	OrderIndex  int       `gorm:"column:order_index;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
