// Package repository is the catalog store. Services depend on the Store
// interface only; GormStore is the relational implementation.
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/musiclib/backend/internal/models"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicate    = errors.New("duplicate record")
	ErrInvalidState = errors.New("invalid state")
)

// Store gives access to the per-entity repositories. Repositories obtained
// inside WithinTx share the transaction.
type Store interface {
	Genres() GenreRepository
	Artists() ArtistRepository
	Albums() AlbumRepository
	Tracks() TrackRepository
	Comments() CommentRepository

	WithinTx(ctx context.Context, fn func(Store) error) error
}

type GenreRepository interface {
	List(ctx context.Context) ([]models.Genre, error)
	FindByCodes(ctx context.Context, codes []string) ([]models.Genre, error)
	Create(ctx context.Context, g *models.Genre) error
}

type ArtistRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Artist, error)
	FindByName(ctx context.Context, name string) (*models.Artist, error)
	// UpsertByName returns the artist with the exact name, creating it if
	// needed. A concurrent insert of the same name resolves to the stored row.
	UpsertByName(ctx context.Context, name string) (*models.Artist, error)
	Create(ctx context.Context, a *models.Artist) error
	Save(ctx context.Context, a *models.Artist) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, p ListParams) ([]models.Artist, int64, error)
	Suggest(ctx context.Context, q string, limit int) ([]models.Artist, error)
}

type AlbumRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Album, error)
	FindByTitle(ctx context.Context, title string) (*models.Album, error)
	// UpsertByTitle behaves like ArtistRepository.UpsertByName. year is only
	// used when the album is created.
	UpsertByTitle(ctx context.Context, title string, year *int) (*models.Album, error)
	AddArtists(ctx context.Context, album *models.Album, artists []models.Artist) error
	Create(ctx context.Context, a *models.Album) error
	Save(ctx context.Context, a *models.Album) error
	// Delete removes the album and detaches its tracks.
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, p ListParams) ([]models.Album, int64, error)
	Suggest(ctx context.Context, q string, limit int) ([]models.Album, error)
}

type TrackRepository interface {
	Create(ctx context.Context, t *models.Track) error
	Save(ctx context.Context, t *models.Track) error
	FindByID(ctx context.Context, id uint) (*models.Track, error)
	// Delete removes the track, its comments and its relation links.
	Delete(ctx context.Context, id uint) error
	ReplaceArtists(ctx context.Context, t *models.Track, artists []models.Artist) error
	ReplaceGenres(ctx context.Context, t *models.Track, genres []models.Genre) error
	SetStatus(ctx context.Context, id uint, status models.TrackStatus) error
	Search(ctx context.Context, f TrackFilter) ([]models.Track, int64, error)
}

type CommentRepository interface {
	Create(ctx context.Context, c *models.Comment) error
	FindByID(ctx context.Context, id uint) (*models.Comment, error)
	Save(ctx context.Context, c *models.Comment) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, f CommentFilter) ([]models.Comment, int64, error)
}

// ListParams pages a name-ordered listing, optionally narrowed by a
// case-insensitive substring.
type ListParams struct {
	Query  string
	Limit  int
	Offset int
}

// TrackFilter is applied as a conjunction of every non-empty field.
// Search matches title, artist name, album title or genre name.
type TrackFilter struct {
	Search string
	Title  string
	Genre  string // exact genre code
	Artist string
	Album  string

	Statuses   []models.TrackStatus
	UploadedBy *uuid.UUID

	Limit  int
	Offset int
}

type CommentFilter struct {
	TrackID *uint
	// VisibleOnly restricts comments to approved tracks.
	VisibleOnly bool
	Limit       int
	Offset      int
}
