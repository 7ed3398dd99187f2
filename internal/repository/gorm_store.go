package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// GormStore implements Store on top of a *gorm.DB.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Genres() GenreRepository     { return &genreRepo{db: s.db} }
func (s *GormStore) Artists() ArtistRepository   { return &artistRepo{db: s.db} }
func (s *GormStore) Albums() AlbumRepository     { return &albumRepo{db: s.db} }
func (s *GormStore) Tracks() TrackRepository     { return &trackRepo{db: s.db} }
func (s *GormStore) Comments() CommentRepository { return &commentRepo{db: s.db} }

// WithinTx runs fn in a single transaction. fn's error rolls it back.
func (s *GormStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s anywhere, with wildcards in s escaped.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// containsExpr is a case-insensitive substring condition on column taking one pattern arg.
// Postgres gets ILIKE. On sqlite both sides go through lower(), which
// models.OpenSQLite replaces with a Unicode-aware version; LIKE alone only
// folds ASCII.
func containsExpr(db *gorm.DB, column string) string {
	if db.Dialector.Name() == "postgres" {
		return fmt.Sprintf("%s ILIKE ? ESCAPE '\\'", column)
	}
	return fmt.Sprintf("lower(%s) LIKE lower(?) ESCAPE '\\'", column)
}

func paginate(q *gorm.DB, limit, offset int) *gorm.DB {
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}
