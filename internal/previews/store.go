package previews

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/merchantiq/pricewise-backend/pkg/config"
	"github.com/merchantiq/pricewise-backend/pkg/db/models"
	pkgerrors "github.com/merchantiq/pricewise-backend/pkg/errors"
	"github.com/merchantiq/pricewise-backend/pkg/logger"
	"github.com/merchantiq/pricewise-backend/pkg/metrics"
	"github.com/merchantiq/pricewise-backend/pkg/storage/gcs"
)

const previewContentType = "text/html; charset=utf-8"

type objectStore interface {
	PutObject(ctx context.Context, name, contentType string, payload []byte) error
	GetObject(ctx context.Context, name string) ([]byte, error)
}

type cacheStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	PreviewKey(previewID string) string
}

// Repository persists preview pointer rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, preview *models.ReportPreview) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ReportPreview, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a preview repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, preview *models.ReportPreview) error {
	return r.db.WithContext(ctx).Create(preview).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ReportPreview, error) {
	var preview models.ReportPreview
	if err := r.db.WithContext(ctx).First(&preview, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &preview, nil
}

func (r *repository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&models.ReportPreview{})
	return result.RowsAffected, result.Error
}

// StoreParams groups dependencies for the preview store.
type StoreParams struct {
	Repo    Repository
	Objects objectStore
	Cache   cacheStore
	Config  config.ReportsConfig
	Metrics *metrics.SimulatorMetrics
	Logger  *logger.Logger
}

// Store saves rendered report HTML for shareable links. GCS is the primary
// backend; when the upload fails the document goes to Redis instead so the
// share link still works for a while.
type Store struct {
	repo    Repository
	objects objectStore
	cache   cacheStore
	cfg     config.ReportsConfig
	metrics *metrics.SimulatorMetrics
	logg    *logger.Logger
}

// NewStore builds a preview store.
func NewStore(params StoreParams) (*Store, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Cache == nil {
		return nil, errors.New("cache store is required")
	}
	return &Store{
		repo:    params.Repo,
		objects: params.Objects,
		cache:   params.Cache,
		cfg:     params.Config,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

// Save writes the rendered document and records where it landed. The returned
// preview id is the public share handle.
func (s *Store) Save(ctx context.Context, reportID *uuid.UUID, html string) (*models.ReportPreview, error) {
	previewID := uuid.New()
	objectKey := fmt.Sprintf("previews/%s.html", previewID)

	backend := models.PreviewBackendGCS
	if s.objects != nil {
		if err := s.objects.PutObject(ctx, objectKey, previewContentType, []byte(html)); err != nil {
			if s.logg != nil {
				s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "preview upload failed, falling back to redis")
			}
			s.metrics.IncPreviewWrite(models.PreviewBackendGCS, "error")
			backend = models.PreviewBackendRedis
		}
	} else {
		backend = models.PreviewBackendRedis
	}

	if backend == models.PreviewBackendRedis {
		objectKey = s.cache.PreviewKey(previewID.String())
		if err := s.cache.Set(ctx, objectKey, html, s.fallbackTTL()); err != nil {
			s.metrics.IncPreviewWrite(models.PreviewBackendRedis, "error")
			return nil, fmt.Errorf("storing preview fallback: %w", err)
		}
	}
	s.metrics.IncPreviewWrite(backend, "ok")

	preview := &models.ReportPreview{
		ID:        previewID,
		ReportID:  reportID,
		Backend:   backend,
		ObjectKey: objectKey,
		ExpiresAt: time.Now().UTC().Add(s.previewTTL()),
	}
	if err := s.repo.Create(ctx, preview); err != nil {
		return nil, fmt.Errorf("recording preview: %w", err)
	}
	return preview, nil
}

// Fetch loads the rendered document for a share link.
func (s *Store) Fetch(ctx context.Context, id uuid.UUID) (string, error) {
	preview, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("loading preview: %w", err)
	}
	if preview == nil || time.Now().UTC().After(preview.ExpiresAt) {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "preview not found")
	}

	switch preview.Backend {
	case models.PreviewBackendGCS:
		if s.objects == nil {
			return "", pkgerrors.New(pkgerrors.CodeDependency, "object storage unavailable")
		}
		payload, err := s.objects.GetObject(ctx, preview.ObjectKey)
		if err != nil {
			if errors.Is(err, gcs.ErrObjectNotFound) {
				return "", pkgerrors.New(pkgerrors.CodeNotFound, "preview not found")
			}
			return "", fmt.Errorf("fetching preview object: %w", err)
		}
		return string(payload), nil
	case models.PreviewBackendRedis:
		payload, err := s.cache.Get(ctx, preview.ObjectKey)
		if err != nil {
			if errors.Is(err, redislib.Nil) {
				return "", pkgerrors.New(pkgerrors.CodeNotFound, "preview not found")
			}
			return "", fmt.Errorf("fetching preview cache: %w", err)
		}
		return payload, nil
	default:
		return "", fmt.Errorf("unknown preview backend %q", preview.Backend)
	}
}

func (s *Store) previewTTL() time.Duration {
	if s.cfg.PreviewTTL > 0 {
		return s.cfg.PreviewTTL
	}
	return 30 * 24 * time.Hour
}

func (s *Store) fallbackTTL() time.Duration {
	if s.cfg.FallbackCacheTTL > 0 {
		return s.cfg.FallbackCacheTTL
	}
	return 7 * 24 * time.Hour
}
