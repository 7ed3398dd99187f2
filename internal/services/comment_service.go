package services

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/musiclib/backend/internal/models"
	"github.com/musiclib/backend/internal/repository"
	"github.com/musiclib/backend/pkg/validation"
	"go.uber.org/zap"
)

const maxCommentLen = 2000

// CommentInput is an anonymous comment submission or an admin edit.
type CommentInput struct {
	TrackID    uint
	AuthorName string
	Text       string
}

// CommentService handles anonymous comments. Only comments on approved
// tracks are public.
type CommentService struct {
	store repository.Store
	log   *zap.Logger
}

func NewCommentService(store repository.Store, log *zap.Logger) *CommentService {
	return &CommentService{store: store, log: log.Named("comments")}
}

// List pages the public comments, optionally for a single track.
func (s *CommentService) List(ctx context.Context, trackID *uint, page, size int) (*Page[models.Comment], error) {
	return fetchPage(APIPages, page, size, func(limit, offset int) ([]models.Comment, int64, error) {
		return s.store.Comments().List(ctx, repository.CommentFilter{
			TrackID:     trackID,
			VisibleOnly: true,
			Limit:       limit,
			Offset:      offset,
		})
	})
}

// Get returns a comment if its track is publicly visible.
func (s *CommentService) Get(ctx context.Context, id uint) (*models.Comment, error) {
	c, err := s.store.Comments().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.visibleTrack(ctx, c.TrackID); err != nil {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *CommentService) Create(ctx context.Context, in CommentInput) (*models.Comment, error) {
	if _, err := s.visibleTrack(ctx, in.TrackID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fieldError("track", ErrInvalidInput, "Трек не найден.")
		}
		return nil, err
	}
	author, text, err := commentFields(in)
	if err != nil {
		return nil, err
	}

	c := &models.Comment{TrackID: in.TrackID, AuthorName: author, Text: text}
	if err := s.store.Comments().Create(ctx, c); err != nil {
		return nil, err
	}
	s.log.Debug("comment created", zap.Uint("comment_id", c.ID), zap.Uint("track_id", c.TrackID))
	return c, nil
}

// Update edits the author and text of a comment. The track and creation
// time never change.
func (s *CommentService) Update(ctx context.Context, id uint, in CommentInput) (*models.Comment, error) {
	author, text, err := commentFields(in)
	if err != nil {
		return nil, err
	}
	c, err := s.store.Comments().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.AuthorName, c.Text = author, text
	if err := s.store.Comments().Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CommentService) Delete(ctx context.Context, id uint) error {
	if err := s.store.Comments().Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("comment deleted", zap.Uint("comment_id", id))
	return nil
}

func (s *CommentService) visibleTrack(ctx context.Context, id uint) (*models.Track, error) {
	t, err := s.store.Tracks().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status != models.TrackStatusApproved {
		return nil, ErrNotFound
	}
	return t, nil
}

func commentFields(in CommentInput) (string, string, error) {
	author, err := normalizeUploader(validation.SanitizeString(in.AuthorName))
	if err != nil {
		return "", "", fieldError("author_name", ErrInvalidInput, fmt.Sprintf("Имя длиннее %d символов.", maxUploaderLen))
	}
	text := validation.SanitizeString(in.Text)
	if text == "" {
		return "", "", fieldError("text", ErrInvalidInput, "Текст комментария обязателен.")
	}
	if utf8.RuneCountInString(text) > maxCommentLen {
		return "", "", fieldError("text", ErrInvalidInput, fmt.Sprintf("Комментарий длиннее %d символов.", maxCommentLen))
	}
	return author, text, nil
}
