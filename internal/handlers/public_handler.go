package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/musiclib/backend/internal/middleware"
	"github.com/musiclib/backend/internal/models"
	"github.com/musiclib/backend/internal/services"
	"go.uber.org/zap"
)

// PublicHandler serves the read side of the catalog.
type PublicHandler struct {
	catalog *services.CatalogService
	genres  *services.GenreService
	log     *zap.Logger
}

func NewPublicHandler(catalog *services.CatalogService, genres *services.GenreService, log *zap.Logger) *PublicHandler {
	return &PublicHandler{catalog: catalog, genres: genres, log: log}
}

// trackResponse adds the playback URL to a track.
type trackResponse struct {
	models.Track
	AudioURL string `json:"audio_url"`
}

func newTrackResponse(t models.Track) trackResponse {
	return trackResponse{Track: t, AudioURL: fmt.Sprintf("/api/v1/tracks/%d/audio", t.ID)}
}

func trackQuery(c *gin.Context) services.TrackQuery {
	return services.TrackQuery{
		Search:   c.Query("search"),
		Title:    c.Query("title"),
		Genre:    c.Query("genre"),
		Artist:   c.Query("artist"),
		Album:    c.Query("album"),
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "page_size"),
	}
}

// Catalog is the page listing: search replaces the facet filters and the
// page size is one of 6, 12 or 24.
// GET /catalog
func (h *PublicHandler) Catalog(c *gin.Context) {
	q := trackQuery(c)
	q.Title = ""
	h.query(c, q, services.ModeSearchOnly, services.ListingPages)
}

// ListTracks is the API listing: search and facets combine.
// GET /tracks
func (h *PublicHandler) ListTracks(c *gin.Context) {
	h.query(c, trackQuery(c), services.ModeSearchPlusFilter, services.APIPages)
}

func (h *PublicHandler) query(c *gin.Context, q services.TrackQuery, mode services.SearchMode, policy services.PagePolicy) {
	page, err := h.catalog.Query(c.Request.Context(), q, mode, policy)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, mapPage(page, newTrackResponse))
}

// GET /tracks/:id
func (h *PublicHandler) GetTrack(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	track, err := h.catalog.GetTrack(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newTrackResponse(*track))
}

// StreamAudio redirects to a presigned URL or serves the local file.
// GET /tracks/:id/audio
func (h *PublicHandler) StreamAudio(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	track, loc, err := h.catalog.AudioLocation(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if loc.URL != "" {
		c.Redirect(http.StatusFound, loc.URL)
		return
	}
	if track.AudioMimeType != "" {
		c.Header("Content-Type", track.AudioMimeType)
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", track.AudioFilename))
	c.File(loc.Path)
}

// GET /genres
func (h *PublicHandler) ListGenres(c *gin.Context) {
	genres, err := h.genres.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": genres})
}

// GET /artists/search?q=
func (h *PublicHandler) SuggestArtists(c *gin.Context) {
	artists, err := h.catalog.SuggestArtists(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": artists})
}

// GET /albums/search?q=
func (h *PublicHandler) SuggestAlbums(c *gin.Context) {
	albums, err := h.catalog.SuggestAlbums(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": albums})
}
