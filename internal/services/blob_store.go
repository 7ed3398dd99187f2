package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/musiclib/backend/internal/config"
	"go.uber.org/zap"
)

// BlobLocation tells the HTTP layer how to deliver a stored object:
// either redirect to URL or serve the local file at Path.
type BlobLocation struct {
	URL  string
	Path string
}

// BlobStore keeps audio payloads outside the relational store.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	Locate(ctx context.Context, key string) (BlobLocation, error)
}

// BuildObjectKey creates a namespaced storage key
func BuildObjectKey(kind string, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s/%s%s", kind, uuid.New().String(), ext)
}

// NewBlobStore picks the backend named by cfg.StorageBackend.
func NewBlobStore(cfg *config.Config, log *zap.Logger) (BlobStore, error) {
	switch cfg.StorageBackend {
	case "s3":
		s3, err := NewS3Service(cfg, log)
		if err != nil {
			return nil, err
		}
		return s3, nil
	case "local", "":
		local, err := NewStorageService(cfg)
		if err != nil {
			return nil, err
		}
		return local, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}
