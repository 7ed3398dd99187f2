package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/musiclib/backend/internal/services"
	"go.uber.org/zap"
)

// MusicHandler exposes artists and albums: public reads and admin writes.
type MusicHandler struct {
	artists *services.ArtistService
	albums  *services.AlbumService
	trail   auditor
	log     *zap.Logger
}

func NewMusicHandler(artists *services.ArtistService, albums *services.AlbumService, audit *services.AuditService, log *zap.Logger) *MusicHandler {
	return &MusicHandler{artists: artists, albums: albums, trail: auditor{svc: audit, log: log}, log: log}
}

type albumRequest struct {
	Title     string `json:"title" binding:"required"`
	Year      *int   `json:"year"`
	ArtistIDs []uint `json:"artist_ids"`
}

func (r albumRequest) input() services.AlbumInput {
	return services.AlbumInput{Title: r.Title, Year: r.Year, ArtistIDs: r.ArtistIDs}
}

// GET /artists?q=&page=&page_size=
func (h *MusicHandler) ListArtists(c *gin.Context) {
	page, err := h.artists.List(c.Request.Context(), c.Query("q"), queryInt(c, "page"), queryInt(c, "page_size"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /artists/:id
func (h *MusicHandler) GetArtist(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	artist, err := h.artists.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, artist)
}

// POST /admin/artists
func (h *MusicHandler) CreateArtist(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	artist, err := h.artists.Create(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.trail.record(c, "create_artist", "artist", artist.ID, map[string]any{"name": artist.Name})
	c.JSON(http.StatusCreated, artist)
}

// PUT /admin/artists/:id
func (h *MusicHandler) UpdateArtist(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	artist, err := h.artists.Rename(c.Request.Context(), id, req.Name)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.trail.record(c, "update_artist", "artist", id, map[string]any{"name": artist.Name})
	c.JSON(http.StatusOK, artist)
}

// DELETE /admin/artists/:id
func (h *MusicHandler) DeleteArtist(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.artists.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.trail.record(c, "delete_artist", "artist", id, nil)
	c.Status(http.StatusNoContent)
}

// GET /albums?q=&page=&page_size=
func (h *MusicHandler) ListAlbums(c *gin.Context) {
	page, err := h.albums.List(c.Request.Context(), c.Query("q"), queryInt(c, "page"), queryInt(c, "page_size"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /albums/:id
func (h *MusicHandler) GetAlbum(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	album, err := h.albums.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, album)
}

// POST /admin/albums
func (h *MusicHandler) CreateAlbum(c *gin.Context) {
	var req albumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	album, err := h.albums.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.trail.record(c, "create_album", "album", album.ID, map[string]any{"title": album.Title})
	c.JSON(http.StatusCreated, album)
}

// PUT /admin/albums/:id
func (h *MusicHandler) UpdateAlbum(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req albumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	album, err := h.albums.Update(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.trail.record(c, "update_album", "album", id, map[string]any{"title": album.Title})
	c.JSON(http.StatusOK, album)
}

// DELETE /admin/albums/:id
func (h *MusicHandler) DeleteAlbum(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.albums.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.trail.record(c, "delete_album", "album", id, nil)
	c.Status(http.StatusNoContent)
}
