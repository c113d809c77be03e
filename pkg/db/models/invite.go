package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/merchantiq/pricewise-backend/pkg/enums"
)

// Invite is a pending offer to join the dashboard. The token is single use
// and the row flips to accepted when redeemed.
type Invite struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email      string             `gorm:"column:email;not null"`
	Role       enums.UserRole     `gorm:"column:role;not null;default:member"`
	Status     enums.InviteStatus `gorm:"column:status;not null;default:pending"`
	Token      string             `gorm:"column:token;not null;uniqueIndex"`
	InvitedBy  uuid.UUID          `gorm:"column:invited_by;type:uuid;not null"`
	ExpiresAt  time.Time          `gorm:"column:expires_at;not null"`
	AcceptedAt *time.Time         `gorm:"column:accepted_at"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
