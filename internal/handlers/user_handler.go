package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/musiclib/backend/internal/middleware"
	"github.com/musiclib/backend/internal/services"
	"go.uber.org/zap"
)

type UserHandler struct {
	users   *services.UserService
	catalog *services.CatalogService
	log     *zap.Logger
}

func NewUserHandler(users *services.UserService, catalog *services.CatalogService, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, catalog: catalog, log: log}
}

// GetProfile returns the current user
// GET /me
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.users.GetUserByID(c.Request.Context(), *middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// MyTracks lists the caller's uploads in every moderation state
// GET /me/tracks
func (h *UserHandler) MyTracks(c *gin.Context) {
	page, err := h.catalog.MyUploads(c.Request.Context(), *middleware.CurrentUserID(c), queryInt(c, "page"), queryInt(c, "page_size"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, mapPage(page, newTrackResponse))
}
