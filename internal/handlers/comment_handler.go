package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/musiclib/backend/internal/services"
	"go.uber.org/zap"
)

type CommentHandler struct {
	comments *services.CommentService
	trail    auditor
	log      *zap.Logger
}

func NewCommentHandler(comments *services.CommentService, audit *services.AuditService, log *zap.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, trail: auditor{svc: audit, log: log}, log: log}
}

type commentRequest struct {
	Track      uint   `json:"track"`
	AuthorName string `json:"author_name"`
	Text       string `json:"text"`
}

// GET /comments?track=&page=&page_size=
func (h *CommentHandler) ListComments(c *gin.Context) {
	trackID, ok := optionalQueryID(c, "track")
	if !ok {
		return
	}
	page, err := h.comments.List(c.Request.Context(), trackID, queryInt(c, "page"), queryInt(c, "page_size"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /comments/:id
func (h *CommentHandler) GetComment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	comment, err := h.comments.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// CreateComment posts an anonymous comment on a public track.
// POST /comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), services.CommentInput{
		TrackID:    req.Track,
		AuthorName: req.AuthorName,
		Text:       req.Text,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// PUT /admin/comments/:id
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	comment, err := h.comments.Update(c.Request.Context(), id, services.CommentInput{
		AuthorName: req.AuthorName,
		Text:       req.Text,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.trail.record(c, "update_comment", "comment", id, map[string]any{"track": comment.TrackID})
	c.JSON(http.StatusOK, comment)
}

// DELETE /admin/comments/:id
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.comments.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.trail.record(c, "delete_comment", "comment", id, nil)
	c.Status(http.StatusNoContent)
}
