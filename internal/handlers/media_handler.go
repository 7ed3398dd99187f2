package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/musiclib/backend/internal/config"
	"github.com/musiclib/backend/internal/middleware"
	"github.com/musiclib/backend/internal/services"
	"go.uber.org/zap"
)

// multipart overhead allowed on top of the audio payload
const uploadFormOverhead = 1 << 20

// MediaHandler accepts track uploads and lets owners manage them.
type MediaHandler struct {
	uploads *services.UploadService
	cfg     *config.Config
	log     *zap.Logger
}

func NewMediaHandler(uploads *services.UploadService, cfg *config.Config, log *zap.Logger) *MediaHandler {
	return &MediaHandler{uploads: uploads, cfg: cfg, log: log}
}

// UploadTrack handles a track upload
// POST /tracks
// Multipart form: audio_file (required), title, uploaded_by (anonymous only), artist_names (pipe-delimited),
// album_title, genres (repeated)
func (h *MediaHandler) UploadTrack(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == nil && !h.cfg.AnonymousUploads {
		respondError(c, h.log, services.ErrUnauthorized)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxAudioSize+uploadFormOverhead)
	file, header, err := c.Request.FormFile("audio_file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, h.log, &services.FieldError{Field: "audio_file", Message: "Файл должен быть не больше 20 МБ.", Err: services.ErrFileTooLarge})
			return
		}
		respondError(c, h.log, &services.FieldError{Field: "audio_file", Message: "Файл не передан.", Err: services.ErrInvalidInput})
		return
	}
	defer file.Close()

	// signed-in uploaders are always shown under their username
	uploaderName := c.PostForm("uploaded_by")
	if userID != nil {
		uploaderName = middleware.CurrentUsername(c)
	}

	track, err := h.uploads.Upload(c.Request.Context(), services.UploadRequest{
		Title:        c.PostForm("title"),
		UploaderID:   userID,
		UploaderName: uploaderName,
		ArtistNames:  c.PostForm("artist_names"),
		AlbumTitle:   c.PostForm("album_title"),
		GenreCodes:   c.PostFormArray("genres"),
		Audio: services.AudioFile{
			Filename: header.Filename,
			Size:     header.Size,
			Content:  file,
		},
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, newTrackResponse(*track))
}

// UpdateTrack changes the metadata of the caller's own track.
// PUT /tracks/:id
func (h *MediaHandler) UpdateTrack(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Title       *string   `json:"title"`
		ArtistNames *string   `json:"artist_names"`
		AlbumTitle  *string   `json:"album_title"`
		Genres      *[]string `json:"genres"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	track, err := h.uploads.UpdateTrack(c.Request.Context(), id, *middleware.CurrentUserID(c), services.UpdateTrackRequest{
		Title:       req.Title,
		ArtistNames: req.ArtistNames,
		AlbumTitle:  req.AlbumTitle,
		GenreCodes:  req.Genres,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newTrackResponse(*track))
}

// DeleteTrack removes the caller's own track.
// DELETE /tracks/:id
func (h *MediaHandler) DeleteTrack(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.uploads.DeleteTrack(c.Request.Context(), id, *middleware.CurrentUserID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
