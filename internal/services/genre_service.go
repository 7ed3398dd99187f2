package services

import (
	"context"
	"errors"
	"strings"

	"github.com/musiclib/backend/internal/models"
	"github.com/musiclib/backend/internal/repository"
	"github.com/musiclib/backend/pkg/validation"
	"go.uber.org/zap"
)

// GenreService manages the closed genre vocabulary. Only administrators and
// the CLI create genres.
type GenreService struct {
	store repository.Store
	log   *zap.Logger
}

func NewGenreService(store repository.Store, log *zap.Logger) *GenreService {
	return &GenreService{store: store, log: log.Named("genres")}
}

func (s *GenreService) List(ctx context.Context) ([]models.Genre, error) {
	return s.store.Genres().List(ctx)
}

func (s *GenreService) Create(ctx context.Context, name, code string) (*models.Genre, error) {
	name = strings.TrimSpace(name)
	code = strings.TrimSpace(code)
	if !validation.ValidateLength(name, 1, 100) {
		return nil, fieldError("name", ErrInvalidInput, "Название жанра обязательно и не длиннее 100 символов.")
	}
	if !validation.ValidateGenreCode(code) {
		return nil, fieldError("code", ErrInvalidInput, "Код жанра: строчные латинские буквы, цифры, - и _.")
	}

	genre := &models.Genre{Name: name, Code: code}
	if err := s.store.Genres().Create(ctx, genre); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}
	s.log.Info("genre created", zap.String("code", code), zap.String("name", name))
	return genre, nil
}
