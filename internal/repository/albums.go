package repository

import (
	"context"
	"errors"

	"github.com/musiclib/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type albumRepo struct {
	db *gorm.DB
}

func (r *albumRepo) FindByID(ctx context.Context, id uint) (*models.Album, error) {
	var a models.Album
	if err := r.db.WithContext(ctx).Preload("Artists").First(&a, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (r *albumRepo) FindByTitle(ctx context.Context, title string) (*models.Album, error) {
	var a models.Album
	if err := r.db.WithContext(ctx).Where("title = ?", title).First(&a).Error; err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (r *albumRepo) UpsertByTitle(ctx context.Context, title string, year *int) (*models.Album, error) {
	existing, err := r.FindByTitle(ctx, title)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	a := models.Album{Title: title, Year: year}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "title"}}, DoNothing: true}).
		Create(&a)
	if res.Error != nil {
		return nil, mapErr(res.Error)
	}
	if res.RowsAffected == 0 || a.ID == 0 {
		return r.FindByTitle(ctx, title)
	}
	return &a, nil
}

func (r *albumRepo) AddArtists(ctx context.Context, album *models.Album, artists []models.Artist) error {
	if album == nil || album.ID == 0 {
		return ErrInvalidState
	}
	if len(artists) == 0 {
		return nil
	}
	return mapErr(r.db.WithContext(ctx).Model(album).Association("Artists").Append(artists))
}

func (r *albumRepo) Create(ctx context.Context, a *models.Album) error {
	return mapErr(r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error)
}

func (r *albumRepo) Save(ctx context.Context, a *models.Album) error {
	res := r.db.WithContext(ctx).Model(a).Select("*").Omit(clause.Associations, "CreatedAt").Updates(a)
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *albumRepo) Delete(ctx context.Context, id uint) error {
	return mapErr(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// tracks outlive their album
		if err := tx.Model(&models.Track{}).Where("album_id = ?", id).Update("album_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM album_artists WHERE album_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Album{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	}))
}

func (r *albumRepo) List(ctx context.Context, p ListParams) ([]models.Album, int64, error) {
	db := r.db.WithContext(ctx)
	scope := func(q *gorm.DB) *gorm.DB {
		q = q.Model(&models.Album{})
		if p.Query != "" {
			q = q.Where(containsExpr(db, "title"), containsPattern(p.Query))
		}
		return q
	}

	var total int64
	if err := scope(db).Count(&total).Error; err != nil {
		return nil, 0, mapErr(err)
	}

	albums := []models.Album{}
	err := paginate(scope(db), p.Limit, p.Offset).
		Preload("Artists").
		Order("title ASC").Order("id ASC").
		Find(&albums).Error
	return albums, total, mapErr(err)
}

func (r *albumRepo) Suggest(ctx context.Context, q string, limit int) ([]models.Album, error) {
	db := r.db.WithContext(ctx)
	albums := []models.Album{}
	err := db.Where(containsExpr(db, "title"), containsPattern(q)).
		Order("title ASC").
		Limit(limit).
		Find(&albums).Error
	return albums, mapErr(err)
}
