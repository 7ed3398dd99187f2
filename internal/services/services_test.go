package services

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/musiclib/backend/internal/config"
	"github.com/musiclib/backend/internal/models"
	"github.com/musiclib/backend/internal/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// memBlobs is an in-memory BlobStore.
type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: map[string][]byte{}}
}

func (m *memBlobs) Put(ctx context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *memBlobs) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memBlobs) Locate(ctx context.Context, key string) (BlobLocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return BlobLocation{}, ErrNotFound
	}
	return BlobLocation{URL: "https://blobs.test/" + key}, nil
}

func (m *memBlobs) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type testEnv struct {
	db      *gorm.DB
	store   *repository.GormStore
	blobs   *memBlobs
	cfg     *config.Config
	log     *zap.Logger
	uploads *UploadService
	catalog *CatalogService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.db")
	db, err := gorm.Open(models.OpenSQLite(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, models.Migrate(db))

	cfg := &config.Config{
		TrackDefaultStatus:      "pending",
		StrictGenreSelection:    true,
		BcryptCost:              4,
		JWTSecret:               "test-secret",
		JWTAccessTokenDuration:  time.Hour,
		JWTRefreshTokenDuration: 2 * time.Hour,
	}
	env := &testEnv{
		db:    db,
		store: repository.NewGormStore(db),
		blobs: newMemBlobs(),
		cfg:   cfg,
		log:   zap.NewNop(),
	}
	env.uploads = NewUploadService(env.store, env.blobs, cfg, env.log)
	env.catalog = NewCatalogService(env.store, env.blobs, env.log)
	return env
}

func (e *testEnv) genre(t *testing.T, name, code string) models.Genre {
	t.Helper()
	g := models.Genre{Name: name, Code: code}
	require.NoError(t, e.store.Genres().Create(context.Background(), &g))
	return g
}

func (e *testEnv) user(t *testing.T, username string) uuid.UUID {
	t.Helper()
	u := models.User{Username: username, Email: username + "@example.com", Password: "x", IsActive: true}
	require.NoError(t, e.db.Create(&u).Error)
	return u.ID
}

func (e *testEnv) upload(t *testing.T, req UploadRequest) *models.Track {
	t.Helper()
	if req.Audio.Content == nil {
		req.Audio = mp3("track.mp3")
	}
	tr, err := e.uploads.Upload(context.Background(), req)
	require.NoError(t, err)
	return tr
}

func (e *testEnv) approve(t *testing.T, id uint) {
	t.Helper()
	_, err := e.uploads.ModerateTrack(context.Background(), id, models.TrackStatusApproved)
	require.NoError(t, err)
}

func (e *testEnv) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

func mp3(name string) AudioFile {
	payload := []byte("not really an mp3 but good enough")
	return AudioFile{Filename: name, Size: int64(len(payload)), Content: bytes.NewReader(payload)}
}
