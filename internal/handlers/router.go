package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/musiclib/backend/internal/config"
	"github.com/musiclib/backend/internal/middleware"
	"github.com/musiclib/backend/internal/services"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer needs. Redis may be nil.
type Deps struct {
	Config *config.Config
	Log    *zap.Logger
	DB     *gorm.DB
	Redis  *redis.Client

	Auth     *services.AuthService
	Users    *services.UserService
	Catalog  *services.CatalogService
	Uploads  *services.UploadService
	Genres   *services.GenreService
	Artists  *services.ArtistService
	Albums   *services.AlbumService
	Comments *services.CommentService
	Audit    *services.AuditService
}

// NewRouter builds the gin engine with every route of the API.
func NewRouter(d Deps) *gin.Engine {
	cfg, log := d.Config, d.Log

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.RateLimiter(d.Redis, cfg, log))

	r.GET("/health", func(c *gin.Context) {
		status := gin.H{"status": "healthy", "time": time.Now().UTC()}
		if sqlDB, err := d.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		c.JSON(http.StatusOK, status)
	})

	publicHandler := NewPublicHandler(d.Catalog, d.Genres, log)
	mediaHandler := NewMediaHandler(d.Uploads, cfg, log)
	musicHandler := NewMusicHandler(d.Artists, d.Albums, d.Audit, log)
	commentHandler := NewCommentHandler(d.Comments, d.Audit, log)
	adminHandler := NewAdminHandler(d.Genres, d.Uploads, d.Audit, log)
	userHandler := NewUserHandler(d.Users, d.Catalog, log)
	authHandler := NewAuthHandler(d.Auth, log)

	requireAuth := middleware.Auth(d.Auth)
	optionalAuth := middleware.OptionalAuth(d.Auth)

	api := r.Group("/api/v1")
	{
		// Public catalog
		public := api.Group("")
		public.Use(optionalAuth)
		{
			public.GET("/catalog", publicHandler.Catalog)
			public.GET("/tracks", publicHandler.ListTracks)
			public.GET("/tracks/:id", publicHandler.GetTrack)
			public.GET("/tracks/:id/audio", publicHandler.StreamAudio)
			public.GET("/genres", publicHandler.ListGenres)

			public.GET("/artists", musicHandler.ListArtists)
			public.GET("/artists/search", publicHandler.SuggestArtists)
			public.GET("/artists/:id", musicHandler.GetArtist)
			public.GET("/albums", musicHandler.ListAlbums)
			public.GET("/albums/search", publicHandler.SuggestAlbums)
			public.GET("/albums/:id", musicHandler.GetAlbum)

			public.GET("/comments", commentHandler.ListComments)
			public.GET("/comments/:id", commentHandler.GetComment)
			public.POST("/comments", middleware.CommentRateLimit(d.Redis, cfg, log), commentHandler.CreateComment)

			// anonymous uploads are refused by the handler unless enabled
			public.POST("/tracks", middleware.UploadRateLimit(d.Redis, cfg, log), mediaHandler.UploadTrack)
		}

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", requireAuth, authHandler.Logout)
		}

		// Authenticated user routes
		user := api.Group("")
		user.Use(requireAuth)
		{
			user.PUT("/tracks/:id", mediaHandler.UpdateTrack)
			user.DELETE("/tracks/:id", mediaHandler.DeleteTrack)
			user.GET("/me", userHandler.GetProfile)
			user.GET("/me/tracks", userHandler.MyTracks)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(requireAuth)
		admin.Use(middleware.AdminOnly())
		{
			admin.POST("/genres", adminHandler.CreateGenre)
			admin.PUT("/tracks/:id/status", adminHandler.ModerateTrack)
			admin.GET("/audit", adminHandler.ListAudit)

			admin.POST("/artists", musicHandler.CreateArtist)
			admin.PUT("/artists/:id", musicHandler.UpdateArtist)
			admin.DELETE("/artists/:id", musicHandler.DeleteArtist)

			admin.POST("/albums", musicHandler.CreateAlbum)
			admin.PUT("/albums/:id", musicHandler.UpdateAlbum)
			admin.DELETE("/albums/:id", musicHandler.DeleteAlbum)

			admin.PUT("/comments/:id", commentHandler.UpdateComment)
			admin.DELETE("/comments/:id", commentHandler.DeleteComment)
		}
	}

	return r
}
