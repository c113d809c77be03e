package previews

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/merchantiq/pricewise-backend/pkg/config"
	"github.com/merchantiq/pricewise-backend/pkg/db/models"
	pkgerrors "github.com/merchantiq/pricewise-backend/pkg/errors"
)

type memRepo struct {
	rows map[uuid.UUID]*models.ReportPreview
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[uuid.UUID]*models.ReportPreview{}}
}

func (m *memRepo) WithTx(tx *gorm.DB) Repository { return m }
func (m *memRepo) Create(ctx context.Context, preview *models.ReportPreview) error {
	m.rows[preview.ID] = preview
	return nil
}
func (m *memRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.ReportPreview, error) {
	return m.rows[id], nil
}
func (m *memRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type stubObjects struct {
	objects map[string][]byte
	putErr  error
}

func (s *stubObjects) PutObject(ctx context.Context, name, contentType string, payload []byte) error {
	if s.putErr != nil {
		return s.putErr
	}
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[name] = payload
	return nil
}

func (s *stubObjects) GetObject(ctx context.Context, name string) ([]byte, error) {
	payload, ok := s.objects[name]
	if !ok {
		return nil, errors.New("missing object")
	}
	return payload, nil
}

type stubCache struct {
	values map[string]string
}

func (s *stubCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if s.values == nil {
		s.values = map[string]string{}
	}
	s.values[key] = value.(string)
	return nil
}

func (s *stubCache) Get(ctx context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return value, nil
}

func (s *stubCache) PreviewKey(previewID string) string {
	return "pw:preview:" + previewID
}

func newTestStore(t *testing.T, repo Repository, objects objectStore, cache cacheStore) *Store {
	t.Helper()
	store, err := NewStore(StoreParams{
		Repo:    repo,
		Objects: objects,
		Cache:   cache,
		Config:  config.ReportsConfig{},
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestSavePrefersObjectStorage(t *testing.T) {
	repo := newMemRepo()
	objects := &stubObjects{}
	store := newTestStore(t, repo, objects, &stubCache{})

	preview, err := store.Save(context.Background(), nil, "<html>report</html>")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if preview.Backend != models.PreviewBackendGCS {
		t.Fatalf("backend = %s, want gcs", preview.Backend)
	}
	if _, ok := objects.objects[preview.ObjectKey]; !ok {
		t.Fatal("expected object uploaded")
	}

	html, err := store.Fetch(context.Background(), preview.ID)
	if err != nil || html != "<html>report</html>" {
		t.Fatalf("fetch = %q, %v", html, err)
	}
}

func TestSaveFallsBackToRedis(t *testing.T) {
	repo := newMemRepo()
	cache := &stubCache{}
	store := newTestStore(t, repo, &stubObjects{putErr: errors.New("bucket gone")}, cache)

	preview, err := store.Save(context.Background(), nil, "<html>fallback</html>")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if preview.Backend != models.PreviewBackendRedis {
		t.Fatalf("backend = %s, want redis", preview.Backend)
	}

	html, err := store.Fetch(context.Background(), preview.ID)
	if err != nil || html != "<html>fallback</html>" {
		t.Fatalf("fetch = %q, %v", html, err)
	}
}

func TestFetchUnknownPreview(t *testing.T) {
	store := newTestStore(t, newMemRepo(), &stubObjects{}, &stubCache{})

	_, err := store.Fetch(context.Background(), uuid.New())
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestFetchExpiredPreview(t *testing.T) {
	repo := newMemRepo()
	store := newTestStore(t, repo, &stubObjects{}, &stubCache{})

	id := uuid.New()
	repo.rows[id] = &models.ReportPreview{
		ID:        id,
		Backend:   models.PreviewBackendGCS,
		ObjectKey: "previews/old.html",
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}

	_, err := store.Fetch(context.Background(), id)
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
