package repository

import (
	"context"
	"strings"

	"github.com/musiclib/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type trackRepo struct {
	db *gorm.DB
}

func (r *trackRepo) Create(ctx context.Context, t *models.Track) error {
	return mapErr(r.db.WithContext(ctx).Omit(clause.Associations).Create(t).Error)
}

// Save writes the scalar columns and album link of an existing track.
func (r *trackRepo) Save(ctx context.Context, t *models.Track) error {
	if t.ID == 0 {
		return ErrInvalidState
	}
	res := r.db.WithContext(ctx).Model(t).Select("*").Omit(clause.Associations, "UploadedAt").Updates(t)
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *trackRepo) FindByID(ctx context.Context, id uint) (*models.Track, error) {
	var t models.Track
	err := r.db.WithContext(ctx).
		Preload("Album.Artists").
		Preload("Artists").
		Preload("Genres").
		First(&t, id).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func (r *trackRepo) Delete(ctx context.Context, id uint) error {
	return mapErr(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("track_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM track_artists WHERE track_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM track_genres WHERE track_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Track{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	}))
}

func (r *trackRepo) ReplaceArtists(ctx context.Context, t *models.Track, artists []models.Artist) error {
	if t == nil || t.ID == 0 {
		return ErrInvalidState
	}
	assoc := r.db.WithContext(ctx).Model(t).Association("Artists")
	if len(artists) == 0 {
		return mapErr(assoc.Clear())
	}
	return mapErr(assoc.Replace(artists))
}

func (r *trackRepo) ReplaceGenres(ctx context.Context, t *models.Track, genres []models.Genre) error {
	if t == nil || t.ID == 0 {
		return ErrInvalidState
	}
	assoc := r.db.WithContext(ctx).Model(t).Association("Genres")
	if len(genres) == 0 {
		return mapErr(assoc.Clear())
	}
	return mapErr(assoc.Replace(genres))
}

func (r *trackRepo) SetStatus(ctx context.Context, id uint, status models.TrackStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Track{}).Where("id = ?", id).Update("status", string(status))
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Search returns one page of matching tracks, newest upload first, and the
// total number of matches. Relation filters are EXISTS subqueries so a track
// matching several join rows is counted once.
func (r *trackRepo) Search(ctx context.Context, f TrackFilter) ([]models.Track, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := f.scope(db).Count(&total).Error; err != nil {
		return nil, 0, mapErr(err)
	}

	tracks := []models.Track{}
	if total == 0 || int64(f.Offset) >= total {
		return tracks, total, nil
	}

	err := paginate(f.scope(db), f.Limit, f.Offset).
		Preload("Album").
		Preload("Artists").
		Preload("Genres").
		Order("tracks.uploaded_at DESC").
		Order("tracks.id DESC").
		Find(&tracks).Error
	return tracks, total, mapErr(err)
}

func (f TrackFilter) scope(db *gorm.DB) *gorm.DB {
	q := db.Model(&models.Track{})

	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			statuses[i] = string(st)
		}
		q = q.Where("tracks.status IN ?", statuses)
	}
	if f.UploadedBy != nil {
		q = q.Where("tracks.uploaded_by_id = ?", *f.UploadedBy)
	}

	if f.Search != "" {
		p := containsPattern(f.Search)
		cond := strings.Join([]string{
			containsExpr(db, "tracks.title"),
			artistExists(db),
			albumExists(db),
			"EXISTS (SELECT 1 FROM track_genres tg JOIN genres g ON g.id = tg.genre_id WHERE tg.track_id = tracks.id AND " + containsExpr(db, "g.name") + ")",
		}, " OR ")
		q = q.Where("("+cond+")", p, p, p, p)
	}

	if f.Title != "" {
		q = q.Where(containsExpr(db, "tracks.title"), containsPattern(f.Title))
	}
	if f.Genre != "" {
		q = q.Where("EXISTS (SELECT 1 FROM track_genres tg JOIN genres g ON g.id = tg.genre_id WHERE tg.track_id = tracks.id AND g.code = ?)", f.Genre)
	}
	if f.Artist != "" {
		q = q.Where(artistExists(db), containsPattern(f.Artist))
	}
	if f.Album != "" {
		q = q.Where(albumExists(db), containsPattern(f.Album))
	}

	return q
}

func artistExists(db *gorm.DB) string {
	return "EXISTS (SELECT 1 FROM track_artists ta JOIN artists a ON a.id = ta.artist_id WHERE ta.track_id = tracks.id AND " + containsExpr(db, "a.name") + ")"
}

func albumExists(db *gorm.DB) string {
	return "EXISTS (SELECT 1 FROM albums al WHERE al.id = tracks.album_id AND " + containsExpr(db, "al.title") + ")"
}
