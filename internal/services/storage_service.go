package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/musiclib/backend/internal/config"
)

// StorageService stores audio on the local filesystem under LocalAssetsPath.
type StorageService struct {
	root string
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	root, err := filepath.Abs(cfg.LocalAssetsPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &StorageService{root: root}, nil
}

func (s *StorageService) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.SaveStream(ctx, key, bytes.NewReader(data))
	return err
}

// SaveStream writes r to key through a temporary .part file so readers never
// see a partial object. It returns the number of bytes written.
func (s *StorageService) SaveStream(ctx context.Context, key string, r io.Reader) (int64, error) {
	absPath, err := s.path(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return 0, err
	}

	tmp := absPath + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		_ = os.Remove(tmp)
		return 0, err
	}

	if err := f.Sync(); err != nil {
		_ = os.Remove(tmp)
		return 0, err
	}

	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return 0, err
	}
	return n, nil
}

func (s *StorageService) Delete(ctx context.Context, key string) error {
	absPath, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(absPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *StorageService) Locate(ctx context.Context, key string) (BlobLocation, error) {
	absPath, err := s.path(key)
	if err != nil {
		return BlobLocation{}, err
	}
	if _, err := os.Stat(absPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return BlobLocation{}, ErrNotFound
		}
		return BlobLocation{}, err
	}
	return BlobLocation{Path: absPath}, nil
}

// path maps a key to a file below root, refusing keys that escape it.
func (s *StorageService) path(key string) (string, error) {
	absPath := filepath.Join(s.root, filepath.FromSlash(key))
	if absPath != s.root && !strings.HasPrefix(absPath, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("storage key %q escapes storage root", key)
	}
	return absPath, nil
}
