package repository

import (
	"context"
	"errors"

	"github.com/musiclib/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type artistRepo struct {
	db *gorm.DB
}

func (r *artistRepo) FindByID(ctx context.Context, id uint) (*models.Artist, error) {
	var a models.Artist
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (r *artistRepo) FindByName(ctx context.Context, name string) (*models.Artist, error) {
	var a models.Artist
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&a).Error; err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (r *artistRepo) UpsertByName(ctx context.Context, name string) (*models.Artist, error) {
	existing, err := r.FindByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	a := models.Artist{Name: name}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&a)
	if res.Error != nil {
		return nil, mapErr(res.Error)
	}
	if res.RowsAffected == 0 || a.ID == 0 {
		// another writer inserted the same name first
		return r.FindByName(ctx, name)
	}
	return &a, nil
}

func (r *artistRepo) Create(ctx context.Context, a *models.Artist) error {
	return mapErr(r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error)
}

func (r *artistRepo) Save(ctx context.Context, a *models.Artist) error {
	res := r.db.WithContext(ctx).Model(a).Select("*").Omit(clause.Associations, "CreatedAt").Updates(a)
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *artistRepo) Delete(ctx context.Context, id uint) error {
	return mapErr(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM track_artists WHERE artist_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM album_artists WHERE artist_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Artist{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	}))
}

func (r *artistRepo) List(ctx context.Context, p ListParams) ([]models.Artist, int64, error) {
	db := r.db.WithContext(ctx)
	scope := func(q *gorm.DB) *gorm.DB {
		q = q.Model(&models.Artist{})
		if p.Query != "" {
			q = q.Where(containsExpr(db, "name"), containsPattern(p.Query))
		}
		return q
	}

	var total int64
	if err := scope(db).Count(&total).Error; err != nil {
		return nil, 0, mapErr(err)
	}

	artists := []models.Artist{}
	err := paginate(scope(db), p.Limit, p.Offset).Order("name ASC").Order("id ASC").Find(&artists).Error
	return artists, total, mapErr(err)
}

func (r *artistRepo) Suggest(ctx context.Context, q string, limit int) ([]models.Artist, error) {
	db := r.db.WithContext(ctx)
	artists := []models.Artist{}
	err := db.Where(containsExpr(db, "name"), containsPattern(q)).
		Order("name ASC").
		Limit(limit).
		Find(&artists).Error
	return artists, mapErr(err)
}
