package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/musiclib/backend/internal/config"
	"github.com/musiclib/backend/internal/models"
	"github.com/musiclib/backend/internal/pkg/audio"
	"github.com/musiclib/backend/internal/repository"
	"go.uber.org/zap"
)

const (
	DefaultTrackTitle   = "Unnamed"
	AnonymousUploader   = "Аноним"
	artistNameDelimiter = "|"

	maxTitleLen    = 200
	maxArtistLen   = 100
	maxAlbumLen    = 200
	maxUploaderLen = 100
)

// UploadRequest is a submitted track. ArtistNames is pipe-delimited.
type UploadRequest struct {
	Title        string
	UploaderID   *uuid.UUID
	UploaderName string
	ArtistNames  string
	AlbumTitle   string
	GenreCodes   []string
	Audio        AudioFile
}

// UpdateTrackRequest changes the metadata of an existing track. Nil fields
// are left as they are; an empty AlbumTitle detaches the album.
type UpdateTrackRequest struct {
	Title       *string
	ArtistNames *string
	AlbumTitle  *string
	GenreCodes  *[]string
}

// UploadService turns submitted uploads into tracks linked to deduplicated
// artist, album and genre rows.
type UploadService struct {
	store repository.Store
	blobs BlobStore
	cfg   *config.Config
	log   *zap.Logger
}

func NewUploadService(store repository.Store, blobs BlobStore, cfg *config.Config, log *zap.Logger) *UploadService {
	return &UploadService{
		store: store,
		blobs: blobs,
		cfg:   cfg,
		log:   log.Named("upload"),
	}
}

// trackLinks is the resolved relation input for reconcile. A nil field
// leaves that relation untouched.
type trackLinks struct {
	artistNames []string
	setArtists  bool
	albumTitle  *string
	albumYear   *int
	genres      []models.Genre
	setGenres   bool
}

// Upload validates the payload, stores it, and creates the track with all
// of its relations in one transaction.
func (s *UploadService) Upload(ctx context.Context, req UploadRequest) (*models.Track, error) {
	if err := ValidateAudio(req.Audio); err != nil {
		return nil, err
	}

	title, err := normalizeTitle(req.Title)
	if err != nil {
		return nil, err
	}
	uploader, err := normalizeUploader(req.UploaderName)
	if err != nil {
		return nil, err
	}
	artistNames, err := ParseArtistNames(req.ArtistNames)
	if err != nil {
		return nil, err
	}
	albumTitle, err := normalizeAlbumTitle(req.AlbumTitle)
	if err != nil {
		return nil, err
	}
	genres, err := s.resolveGenres(ctx, req.GenreCodes)
	if err != nil {
		return nil, err
	}

	data, err := readAudio(req.Audio)
	if err != nil {
		return nil, err
	}
	info := audio.Probe(req.Audio.Filename, data)
	sum := sha256.Sum256(data)

	key := BuildObjectKey("tracks", req.Audio.Filename)
	if err := s.blobs.Put(ctx, key, data, info.MimeType); err != nil {
		return nil, fmt.Errorf("failed to store audio: %w", err)
	}

	track := &models.Track{
		Title:         title,
		Status:        s.defaultStatus(),
		AudioKey:      key,
		AudioFilename: req.Audio.Filename,
		AudioMimeType: info.MimeType,
		AudioSize:     int64(len(data)),
		AudioChecksum: hex.EncodeToString(sum[:]),
		Duration:      info.Duration,
		UploaderName:  uploader,
		UploadedByID:  req.UploaderID,
	}
	links := trackLinks{
		artistNames: artistNames,
		setArtists:  true,
		albumTitle:  &albumTitle,
		albumYear:   info.Year,
		genres:      genres,
		setGenres:   true,
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Tracks().Create(ctx, track); err != nil {
			return err
		}
		return s.reconcile(ctx, tx, track, links)
	})
	if err != nil {
		if derr := s.blobs.Delete(ctx, key); derr != nil {
			s.log.Warn("failed to remove orphaned audio", zap.String("key", key), zap.Error(derr))
		}
		return nil, fmt.Errorf("failed to save track: %w", err)
	}

	s.log.Info("track uploaded",
		zap.Uint("track_id", track.ID),
		zap.String("title", track.Title),
		zap.Int("artists", len(artistNames)),
		zap.Int("genres", len(genres)),
	)
	return s.store.Tracks().FindByID(ctx, track.ID)
}

// UpdateTrack re-runs reconciliation on a track owned by userID.
func (s *UploadService) UpdateTrack(ctx context.Context, id uint, userID uuid.UUID, req UpdateTrackRequest) (*models.Track, error) {
	track, err := s.store.Tracks().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !track.OwnedBy(userID) {
		return nil, ErrForbidden
	}

	var links trackLinks
	if req.Title != nil {
		if track.Title, err = normalizeTitle(*req.Title); err != nil {
			return nil, err
		}
	}
	if req.ArtistNames != nil {
		if links.artistNames, err = ParseArtistNames(*req.ArtistNames); err != nil {
			return nil, err
		}
		links.setArtists = true
	}
	if req.AlbumTitle != nil {
		title, err := normalizeAlbumTitle(*req.AlbumTitle)
		if err != nil {
			return nil, err
		}
		links.albumTitle = &title
	}
	if req.GenreCodes != nil {
		if links.genres, err = s.resolveGenres(ctx, *req.GenreCodes); err != nil {
			return nil, err
		}
		links.setGenres = true
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		return s.reconcile(ctx, tx, track, links)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update track: %w", err)
	}
	return s.store.Tracks().FindByID(ctx, track.ID)
}

// DeleteTrack removes a track owned by userID together with its comments
// and its audio payload.
func (s *UploadService) DeleteTrack(ctx context.Context, id uint, userID uuid.UUID) error {
	track, err := s.store.Tracks().FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !track.OwnedBy(userID) {
		return ErrForbidden
	}

	if err := s.store.Tracks().Delete(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, track.AudioKey); err != nil {
		s.log.Warn("failed to delete audio", zap.Uint("track_id", id), zap.String("key", track.AudioKey), zap.Error(err))
	}
	s.log.Info("track deleted", zap.Uint("track_id", id), zap.String("user_id", userID.String()))
	return nil
}

// ModerateTrack sets the visibility status of a track.
func (s *UploadService) ModerateTrack(ctx context.Context, id uint, status models.TrackStatus) (*models.Track, error) {
	if !status.Valid() {
		return nil, fieldError("status", ErrInvalidInput, "status must be pending, approved or rejected")
	}
	if err := s.store.Tracks().SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.store.Tracks().FindByID(ctx, id)
}

// reconcile links track to its artists, album and genres. The track must
// already be persisted.
func (s *UploadService) reconcile(ctx context.Context, tx repository.Store, track *models.Track, l trackLinks) error {
	if track.ID == 0 {
		return ErrInvalidState
	}

	if l.setArtists {
		artists := make([]models.Artist, 0, len(l.artistNames))
		for _, name := range l.artistNames {
			a, err := tx.Artists().UpsertByName(ctx, name)
			if err != nil {
				return fmt.Errorf("artist %q: %w", name, err)
			}
			artists = append(artists, *a)
		}
		if err := tx.Tracks().ReplaceArtists(ctx, track, artists); err != nil {
			return err
		}
		track.Artists = artists
	}

	if l.albumTitle != nil {
		if *l.albumTitle == "" {
			track.AlbumID = nil
			track.Album = nil
		} else {
			album, err := tx.Albums().UpsertByTitle(ctx, *l.albumTitle, l.albumYear)
			if err != nil {
				return fmt.Errorf("album %q: %w", *l.albumTitle, err)
			}
			// the album credits everyone who performs on its tracks
			if err := tx.Albums().AddArtists(ctx, album, track.Artists); err != nil {
				return err
			}
			track.AlbumID = &album.ID
			track.Album = album
		}
	}

	if err := tx.Tracks().Save(ctx, track); err != nil {
		return err
	}

	if l.setGenres {
		if err := tx.Tracks().ReplaceGenres(ctx, track, l.genres); err != nil {
			return err
		}
	}
	return nil
}

// resolveGenres maps codes to existing genres, preserving input order.
// Genres are never created here.
func (s *UploadService) resolveGenres(ctx context.Context, codes []string) ([]models.Genre, error) {
	codes, err := normalizeGenreCodes(codes, s.cfg.StrictGenreSelection)
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return []models.Genre{}, nil
	}

	found, err := s.store.Genres().FindByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]models.Genre, len(found))
	for _, g := range found {
		byCode[g.Code] = g
	}

	genres := make([]models.Genre, 0, len(codes))
	for _, code := range codes {
		g, ok := byCode[code]
		if !ok {
			return nil, fieldError("genres", ErrUnknownGenre, fmt.Sprintf("Неизвестный жанр: %s.", code))
		}
		genres = append(genres, g)
	}
	return genres, nil
}

func (s *UploadService) defaultStatus() models.TrackStatus {
	if st := models.TrackStatus(s.cfg.TrackDefaultStatus); st.Valid() {
		return st
	}
	return models.TrackStatusPending
}

// ParseArtistNames splits a pipe-delimited artist list. Tokens are trimmed,
// empty tokens skipped and repeats dropped, keeping first-seen order.
func ParseArtistNames(raw string) ([]string, error) {
	names := []string{}
	seen := make(map[string]bool)
	for _, token := range strings.Split(raw, artistNameDelimiter) {
		name := strings.TrimSpace(token)
		if name == "" || seen[name] {
			continue
		}
		if utf8.RuneCountInString(name) > maxArtistLen {
			return nil, fieldError("artist_names", ErrInvalidInput, fmt.Sprintf("Имя исполнителя длиннее %d символов.", maxArtistLen))
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}

// normalizeGenreCodes trims codes and drops blanks. A repeated code is an
// error in strict mode and collapsed otherwise.
func normalizeGenreCodes(codes []string, strict bool) ([]string, error) {
	out := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if seen[c] {
			if strict {
				return nil, fieldError("genres", ErrDuplicateGenreSelection, fmt.Sprintf("Жанр %s выбран несколько раз.", c))
			}
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return DefaultTrackTitle, nil
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "", fieldError("title", ErrInvalidInput, fmt.Sprintf("Название длиннее %d символов.", maxTitleLen))
	}
	return title, nil
}

func normalizeUploader(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return AnonymousUploader, nil
	}
	if utf8.RuneCountInString(name) > maxUploaderLen {
		return "", fieldError("uploaded_by", ErrInvalidInput, fmt.Sprintf("Ник длиннее %d символов.", maxUploaderLen))
	}
	return name, nil
}

func normalizeAlbumTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) > maxAlbumLen {
		return "", fieldError("album_title", ErrInvalidInput, fmt.Sprintf("Название альбома длиннее %d символов.", maxAlbumLen))
	}
	return title, nil
}
