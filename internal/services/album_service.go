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

// AlbumInput is the administrative view of an album. ArtistIDs are added to
// the album's existing artists.
type AlbumInput struct {
	Title     string
	Year      *int
	ArtistIDs []uint
}

type AlbumService struct {
	store repository.Store
	log   *zap.Logger
}

func NewAlbumService(store repository.Store, log *zap.Logger) *AlbumService {
	return &AlbumService{store: store, log: log.Named("albums")}
}

func (s *AlbumService) List(ctx context.Context, q string, page, size int) (*Page[models.Album], error) {
	q = strings.TrimSpace(q)
	return fetchPage(APIPages, page, size, func(limit, offset int) ([]models.Album, int64, error) {
		return s.store.Albums().List(ctx, repository.ListParams{Query: q, Limit: limit, Offset: offset})
	})
}

func (s *AlbumService) Get(ctx context.Context, id uint) (*models.Album, error) {
	return s.store.Albums().FindByID(ctx, id)
}

func (s *AlbumService) Create(ctx context.Context, in AlbumInput) (*models.Album, error) {
	title, err := albumInputTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if err := validYear(in.Year); err != nil {
		return nil, err
	}

	album := &models.Album{Title: title, Year: in.Year}
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Albums().Create(ctx, album); err != nil {
			return conflict(err)
		}
		return s.linkArtists(ctx, tx, album, in.ArtistIDs)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("album created", zap.Uint("album_id", album.ID), zap.String("title", title))
	return s.store.Albums().FindByID(ctx, album.ID)
}

func (s *AlbumService) Update(ctx context.Context, id uint, in AlbumInput) (*models.Album, error) {
	title, err := albumInputTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if err := validYear(in.Year); err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		album, err := tx.Albums().FindByID(ctx, id)
		if err != nil {
			return err
		}
		album.Title = title
		album.Year = in.Year
		if err := tx.Albums().Save(ctx, album); err != nil {
			return conflict(err)
		}
		return s.linkArtists(ctx, tx, album, in.ArtistIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.store.Albums().FindByID(ctx, id)
}

// Delete removes the album. Its tracks stay in the catalog without an album.
func (s *AlbumService) Delete(ctx context.Context, id uint) error {
	if err := s.store.Albums().Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("album deleted", zap.Uint("album_id", id))
	return nil
}

func (s *AlbumService) linkArtists(ctx context.Context, tx repository.Store, album *models.Album, ids []uint) error {
	artists := make([]models.Artist, 0, len(ids))
	for _, id := range ids {
		a, err := tx.Artists().FindByID(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return fieldError("artists", ErrInvalidInput, fmt.Sprintf("Исполнитель %d не найден.", id))
		}
		if err != nil {
			return err
		}
		artists = append(artists, *a)
	}
	return tx.Albums().AddArtists(ctx, album, artists)
}

func albumInputTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fieldError("title", ErrInvalidInput, "Название альбома обязательно.")
	}
	if utf8.RuneCountInString(title) > maxAlbumLen {
		return "", fieldError("title", ErrInvalidInput, fmt.Sprintf("Название альбома длиннее %d символов.", maxAlbumLen))
	}
	return title, nil
}

func validYear(year *int) error {
	if year != nil && (*year < 1000 || *year > 9999) {
		return fieldError("year", ErrInvalidInput, "Год должен состоять из четырёх цифр.")
	}
	return nil
}
