package repository

import (
	"context"

	"github.com/musiclib/backend/internal/models"
	"gorm.io/gorm"
)

type commentRepo struct {
	db *gorm.DB
}

func (r *commentRepo) Create(ctx context.Context, c *models.Comment) error {
	return mapErr(r.db.WithContext(ctx).Omit("Track").Create(c).Error)
}

func (r *commentRepo) FindByID(ctx context.Context, id uint) (*models.Comment, error) {
	var c models.Comment
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *commentRepo) Save(ctx context.Context, c *models.Comment) error {
	res := r.db.WithContext(ctx).Model(c).Select("AuthorName", "Text").Updates(c)
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *commentRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns comments oldest first.
func (r *commentRepo) List(ctx context.Context, f CommentFilter) ([]models.Comment, int64, error) {
	db := r.db.WithContext(ctx)
	scope := func(q *gorm.DB) *gorm.DB {
		q = q.Model(&models.Comment{})
		if f.TrackID != nil {
			q = q.Where("comments.track_id = ?", *f.TrackID)
		}
		if f.VisibleOnly {
			q = q.Where("EXISTS (SELECT 1 FROM tracks t WHERE t.id = comments.track_id AND t.status = ?)", string(models.TrackStatusApproved))
		}
		return q
	}

	var total int64
	if err := scope(db).Count(&total).Error; err != nil {
		return nil, 0, mapErr(err)
	}

	comments := []models.Comment{}
	err := paginate(scope(db), f.Limit, f.Offset).
		Order("comments.created_at ASC").
		Order("comments.id ASC").
		Find(&comments).Error
	return comments, total, mapErr(err)
}
