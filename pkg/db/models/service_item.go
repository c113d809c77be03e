package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/merchantiq/pricewise-backend/pkg/enums"
	"github.com/merchantiq/pricewise-backend/pkg/types"
)

// ServiceItem is a priceable catalog entry offered to clients.
type ServiceItem struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID  uuid.UUID         `gorm:"column:category_id;type:uuid;not null"`
	Name        string            `gorm:"column:name;not null"`
	Description *string           `gorm:"column:description"`
	Unit        string            `gorm:"column:unit;not null"`
	PricingType enums.PricingType `gorm:"column:pricing_type;not null;default:fixed"`
	UnitPrice   decimal.Decimal   `gorm:"column:unit_price;type:numeric(12,2);not null"`
	PriceTiers  types.PriceTiers  `gorm:"column:price_tiers;type:jsonb"`
	Tags        pq.StringArray    `gorm:"column:tags;type:text[];not null;default:ARRAY[]::text[]"`
	IsActive    bool              `gorm:"column:is_active;not null;default:true"`
	Category    *Category         `gorm:"foreignKey:CategoryID"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
