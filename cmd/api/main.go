package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/musiclib/backend/internal/config"
	"github.com/musiclib/backend/internal/handlers"
	"github.com/musiclib/backend/internal/logger"
	"github.com/musiclib/backend/internal/models"
	"github.com/musiclib/backend/internal/repository"
	"github.com/musiclib/backend/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const tokenCleanupInterval = time.Hour

// app holds what every subcommand needs after bootstrap.
type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func main() {
	root := &cobra.Command{
		Use:           "musiclib",
		Short:         "Community audio catalog API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE:  runMigrate,
		},
		genresCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func bootstrap() (*app, error) {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using environment variables")
	}

	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	db, err := models.InitDB(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := models.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &app{cfg: cfg, log: log, db: db}, nil
}

func runMigrate(_ *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.log.Sync()
	a.log.Info("migrations applied")
	return nil
}

func genresCommand() *cobra.Command {
	genres := &cobra.Command{
		Use:   "genres",
		Short: "Manage the genre vocabulary",
	}
	genres.AddCommand(&cobra.Command{
		Use:   "add <code> <name>",
		Short: "Add a genre",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.log.Sync()

			svc := services.NewGenreService(repository.NewGormStore(a.db), a.log)
			genre, err := svc.Create(cmd.Context(), args[1], args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "genre %q (%s) created with id %d\n", genre.Name, genre.Code, genre.ID)
			return nil
		},
	})
	return genres
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	cfg, log, db := a.cfg, a.log, a.db
	defer log.Sync()

	redisClient := models.InitRedis(cfg, log)
	defer redisClient.Close()

	blobs, err := services.NewBlobStore(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to init audio storage: %w", err)
	}
	store := repository.NewGormStore(db)

	authService := services.NewAuthService(db, redisClient, cfg, log)
	userService := services.NewUserService(db, cfg, log)

	if err := userService.CreateDefaultAdmin(cmd.Context()); err != nil {
		log.Error("failed to create default admin", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(tokenCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := authService.CleanupExpiredTokens(ctx)
				if err != nil {
					log.Warn("refresh token cleanup failed", zap.Error(err))
				} else if deleted > 0 {
					log.Info("expired refresh tokens removed", zap.Int64("count", deleted))
				}
			}
		}
	}()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.NewRouter(handlers.Deps{
		Config:   cfg,
		Log:      log,
		DB:       db,
		Redis:    redisClient,
		Auth:     authService,
		Users:    userService,
		Catalog:  services.NewCatalogService(store, blobs, log),
		Uploads:  services.NewUploadService(store, blobs, cfg, log),
		Genres:   services.NewGenreService(store, log),
		Artists:  services.NewArtistService(store, log),
		Albums:   services.NewAlbumService(store, log),
		Comments: services.NewCommentService(store, log),
		Audit:    services.NewAuditService(db, log),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// uploads of up to 20 MB on slow links
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server exited")
	return nil
}
