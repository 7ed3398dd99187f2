package repository

import (
	"context"

	"github.com/musiclib/backend/internal/models"
	"gorm.io/gorm"
)

type genreRepo struct {
	db *gorm.DB
}

func (r *genreRepo) List(ctx context.Context) ([]models.Genre, error) {
	genres := []models.Genre{}
	err := r.db.WithContext(ctx).Order("name ASC").Find(&genres).Error
	return genres, mapErr(err)
}

func (r *genreRepo) FindByCodes(ctx context.Context, codes []string) ([]models.Genre, error) {
	genres := []models.Genre{}
	if len(codes) == 0 {
		return genres, nil
	}
	err := r.db.WithContext(ctx).Where("code IN ?", codes).Find(&genres).Error
	return genres, mapErr(err)
}

func (r *genreRepo) Create(ctx context.Context, g *models.Genre) error {
	return mapErr(r.db.WithContext(ctx).Create(g).Error)
}
