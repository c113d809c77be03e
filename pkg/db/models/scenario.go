package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantiq/pricewise-backend/pkg/enums"
	"github.com/merchantiq/pricewise-backend/pkg/types"
)

// Scenario is a read-only snapshot of a pricing session. Totals are computed
// server-side when the snapshot is taken and never updated afterward.
type Scenario struct {
	ID               uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Source           enums.ScenarioSource       `gorm:"column:source;not null;default:simulator"`
	SimulatorID      *uuid.UUID                 `gorm:"column:simulator_id;type:uuid"`
	ClientName       string                     `gorm:"column:client_name;not null"`
	ProjectName      string                     `gorm:"column:project_name;not null"`
	PreparedBy       *string                    `gorm:"column:prepared_by"`
	ContactEmail     *string                    `gorm:"column:contact_email"`
	GlobalDiscount   types.GlobalDiscountColumn `gorm:"column:global_discount;type:jsonb"`
	OneTimeTotal     decimal.Decimal            `gorm:"column:one_time_total;type:numeric(14,2);not null"`
	MonthlyTotal     decimal.Decimal            `gorm:"column:monthly_total;type:numeric(14,2);not null"`
	YearlyTotal      decimal.Decimal            `gorm:"column:yearly_total;type:numeric(14,2);not null"`
	TotalProjectCost decimal.Decimal            `gorm:"column:total_project_cost;type:numeric(14,2);not null"`
	Savings          decimal.Decimal            `gorm:"column:savings;type:numeric(14,2);not null"`
	SavingsRate      decimal.Decimal            `gorm:"column:savings_rate;type:numeric(8,6);not null"`
	Items            []ScenarioItem             `gorm:"foreignKey:ScenarioID;constraint:OnDelete:CASCADE"`
	CreatedBy        *uuid.UUID                 `gorm:"column:created_by;type:uuid"`
	CreatedAt        time.Time                  `gorm:"column:created_at;autoCreateTime"`
}

// ScenarioItem is one selected service line frozen into a scenario.
type ScenarioItem struct {
	ID                  uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ScenarioID          uuid.UUID                 `gorm:"column:scenario_id;type:uuid;not null"`
	ServiceID           *uuid.UUID                `gorm:"column:service_id;type:uuid"`
	ServiceName         string                    `gorm:"column:service_name;not null"`
	Description         *string                   `gorm:"column:description"`
	CategorySlug        string                    `gorm:"column:category_slug;not null"`
	Unit                string                    `gorm:"column:unit;not null"`
	PricingType         enums.PricingType         `gorm:"column:pricing_type;not null"`
	PriceTiers          types.PriceTiers          `gorm:"column:price_tiers;type:jsonb"`
	Quantity            int                       `gorm:"column:quantity;not null"`
	UnitPrice           decimal.Decimal           `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Discount            decimal.Decimal           `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	DiscountType        enums.DiscountType        `gorm:"column:discount_type;not null;default:percentage"`
	DiscountApplication enums.DiscountApplication `gorm:"column:discount_application;not null;default:total"`
	IsFree              bool                      `gorm:"column:is_free;not null;default:false"`
	IsOneTime           bool                      `gorm:"column:is_one_time;not null"`
	LineTotal           decimal.Decimal           `gorm:"column:line_total;type:numeric(14,2);not null"`
	OrderIndex          int                       `gorm:"column:order_index;not null;default:0"`
	CreatedAt           time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
