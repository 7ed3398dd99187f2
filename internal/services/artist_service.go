package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/musiclib/backend/internal/models"
	"github.com/musiclib/backend/internal/repository"
	"go.uber.org/zap"
)

// ArtistService is the administrative CRUD over artists. Uploads create
// artists through UploadService instead.
type ArtistService struct {
	store repository.Store
	log   *zap.Logger
}

func NewArtistService(store repository.Store, log *zap.Logger) *ArtistService {
	return &ArtistService{store: store, log: log.Named("artists")}
}

// List pages artists by name, optionally narrowed by a substring.
func (s *ArtistService) List(ctx context.Context, q string, page, size int) (*Page[models.Artist], error) {
	q = strings.TrimSpace(q)
	return fetchPage(APIPages, page, size, func(limit, offset int) ([]models.Artist, int64, error) {
		return s.store.Artists().List(ctx, repository.ListParams{Query: q, Limit: limit, Offset: offset})
	})
}

func (s *ArtistService) Get(ctx context.Context, id uint) (*models.Artist, error) {
	return s.store.Artists().FindByID(ctx, id)
}

func (s *ArtistService) Create(ctx context.Context, name string) (*models.Artist, error) {
	name, err := artistName(name)
	if err != nil {
		return nil, err
	}
	artist := &models.Artist{Name: name}
	if err := s.store.Artists().Create(ctx, artist); err != nil {
		return nil, conflict(err)
	}
	s.log.Info("artist created", zap.Uint("artist_id", artist.ID), zap.String("name", name))
	return artist, nil
}

// Rename changes the artist name. The new name must still be unique.
func (s *ArtistService) Rename(ctx context.Context, id uint, name string) (*models.Artist, error) {
	name, err := artistName(name)
	if err != nil {
		return nil, err
	}
	artist, err := s.store.Artists().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	artist.Name = name
	if err := s.store.Artists().Save(ctx, artist); err != nil {
		return nil, conflict(err)
	}
	return artist, nil
}

// Delete removes the artist and its track and album links. Tracks stay.
func (s *ArtistService) Delete(ctx context.Context, id uint) error {
	if err := s.store.Artists().Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("artist deleted", zap.Uint("artist_id", id))
	return nil
}

func artistName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fieldError("name", ErrInvalidInput, "Имя исполнителя обязательно.")
	}
	if utf8.RuneCountInString(name) > maxArtistLen {
		return "", fieldError("name", ErrInvalidInput, fmt.Sprintf("Имя исполнителя длиннее %d символов.", maxArtistLen))
	}
	return name, nil
}

// conflict turns a store uniqueness violation into ErrConflict.
func conflict(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrConflict
	}
	return err
}
