package models

import (
	"time"

	"github.com/google/uuid"
)

// Preview storage backends.
const (
	PreviewBackendGCS   = "gcs"
	PreviewBackendRedis = "redis"
)

// ReportPreview points at a rendered HTML document stored out of band. The
// row records which backend holds the bytes so reads know where to look.
type ReportPreview struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReportID  *uuid.UUID `gorm:"column:report_id;type:uuid"`
	Backend   string     `gorm:"column:backend;not null"`
	ObjectKey string     `gorm:"column:object_key;not null"`
	ExpiresAt time.Time  `gorm:"column:expires_at;not null"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
