package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/merchantiq/pricewise-backend/pkg/enums"
)

// User is a dashboard account.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string         `gorm:"column:email;not null;uniqueIndex"`
	FirstName    string         `gorm:"column:first_name;not null"`
	LastName     string         `gorm:"column:last_name;not null"`
	Role         enums.UserRole `gorm:"column:role;not null;default:member"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// FullName joins first and last name for display and report headers.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
