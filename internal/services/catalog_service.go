package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/musiclib/backend/internal/models"
	"github.com/musiclib/backend/internal/repository"
	"go.uber.org/zap"
)

// SearchMode decides how the free-text search combines with the facet filters.
type SearchMode int

const (
	// ModeSearchOnly ignores the facet filters whenever search text is given.
	ModeSearchOnly SearchMode = iota
	// ModeSearchPlusFilter applies search and facets together.
	ModeSearchPlusFilter
)

const suggestLimit = 10

// TrackQuery is a catalog request as it arrives from a client.
type TrackQuery struct {
	Search string
	Title  string
	Genre  string
	Artist string
	Album  string

	Page     int
	PageSize int
}

func (q TrackQuery) filter(mode SearchMode) repository.TrackFilter {
	f := repository.TrackFilter{
		Search: strings.TrimSpace(q.Search),
		Title:  strings.TrimSpace(q.Title),
		Genre:  strings.TrimSpace(q.Genre),
		Artist: strings.TrimSpace(q.Artist),
		Album:  strings.TrimSpace(q.Album),
	}
	if mode == ModeSearchOnly && f.Search != "" {
		f.Title, f.Genre, f.Artist, f.Album = "", "", "", ""
	}
	return f
}

// CatalogService answers read queries over the public catalog.
type CatalogService struct {
	store repository.Store
	blobs BlobStore
	log   *zap.Logger
}

func NewCatalogService(store repository.Store, blobs BlobStore, log *zap.Logger) *CatalogService {
	return &CatalogService{store: store, blobs: blobs, log: log.Named("catalog")}
}

// Query returns one page of approved tracks, newest first.
func (s *CatalogService) Query(ctx context.Context, q TrackQuery, mode SearchMode, policy PagePolicy) (*Page[models.Track], error) {
	f := q.filter(mode)
	f.Statuses = []models.TrackStatus{models.TrackStatusApproved}
	return s.search(ctx, f, q.Page, q.PageSize, policy)
}

// MyUploads lists every track uploaded by userID regardless of status.
func (s *CatalogService) MyUploads(ctx context.Context, userID uuid.UUID, page, size int) (*Page[models.Track], error) {
	f := repository.TrackFilter{UploadedBy: &userID}
	return s.search(ctx, f, page, size, APIPages)
}

func (s *CatalogService) search(ctx context.Context, f repository.TrackFilter, page, size int, policy PagePolicy) (*Page[models.Track], error) {
	return fetchPage(policy, page, size, func(limit, offset int) ([]models.Track, int64, error) {
		f.Limit, f.Offset = limit, offset
		return s.store.Tracks().Search(ctx, f)
	})
}

// GetTrack returns an approved track, or any track to its uploader.
// viewer may be nil for anonymous requests.
func (s *CatalogService) GetTrack(ctx context.Context, id uint, viewer *uuid.UUID) (*models.Track, error) {
	track, err := s.store.Tracks().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if track.Status == models.TrackStatusApproved {
		return track, nil
	}
	if viewer != nil && track.OwnedBy(*viewer) {
		return track, nil
	}
	return nil, ErrNotFound
}

// AudioLocation resolves where the payload of a visible track can be fetched.
func (s *CatalogService) AudioLocation(ctx context.Context, id uint, viewer *uuid.UUID) (*models.Track, BlobLocation, error) {
	track, err := s.GetTrack(ctx, id, viewer)
	if err != nil {
		return nil, BlobLocation{}, err
	}
	loc, err := s.blobs.Locate(ctx, track.AudioKey)
	if err != nil {
		s.log.Warn("audio payload unavailable", zap.Uint("track_id", id), zap.Error(err))
		return nil, BlobLocation{}, err
	}
	return track, loc, nil
}

// SuggestArtists powers the artist autocomplete.
func (s *CatalogService) SuggestArtists(ctx context.Context, q string) ([]models.Artist, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.Artist{}, nil
	}
	return s.store.Artists().Suggest(ctx, q, suggestLimit)
}

// SuggestAlbums powers the album autocomplete.
func (s *CatalogService) SuggestAlbums(ctx context.Context, q string) ([]models.Album, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.Album{}, nil
	}
	return s.store.Albums().Suggest(ctx, q, suggestLimit)
}
