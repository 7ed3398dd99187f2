package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/musiclib/backend/internal/models"
	"github.com/musiclib/backend/internal/services"
	"go.uber.org/zap"
)

// AdminHandler covers catalog moderation and the genre vocabulary.
type AdminHandler struct {
	genres  *services.GenreService
	uploads *services.UploadService
	audit   *services.AuditService
	trail   auditor
	log     *zap.Logger
}

func NewAdminHandler(genres *services.GenreService, uploads *services.UploadService, audit *services.AuditService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{genres: genres, uploads: uploads, audit: audit, trail: auditor{svc: audit, log: log}, log: log}
}

// CreateGenre adds a genre to the vocabulary
// POST /admin/genres
func (h *AdminHandler) CreateGenre(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	genre, err := h.genres.Create(c.Request.Context(), req.Name, req.Code)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.trail.record(c, "create_genre", "genre", genre.ID, map[string]any{"code": genre.Code, "name": genre.Name})
	c.JSON(http.StatusCreated, genre)
}

// ModerateTrack approves, rejects or re-queues a track
// PUT /admin/tracks/:id/status
func (h *AdminHandler) ModerateTrack(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Status models.TrackStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	track, err := h.uploads.ModerateTrack(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.log.Info("track moderated", zap.Uint("track_id", id), zap.String("status", string(track.Status)))
	h.trail.record(c, "moderate_track", "track", id, map[string]any{"status": track.Status})
	c.JSON(http.StatusOK, newTrackResponse(*track))
}

// ListAudit pages the admin audit log
// GET /admin/audit?action=&admin_id=&page=&page_size=
func (h *AdminHandler) ListAudit(c *gin.Context) {
	var f services.AuditFilter
	f.Action = c.Query("action")
	if raw := c.Query("admin_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "Некорректный параметр admin_id.")
			return
		}
		f.AdminID = &id
	}

	page, err := h.audit.List(c.Request.Context(), f, queryInt(c, "page"), queryInt(c, "page_size"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
