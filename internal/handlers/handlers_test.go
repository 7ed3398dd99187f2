package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/musiclib/backend/internal/config"
	"github.com/musiclib/backend/internal/models"
	"github.com/musiclib/backend/internal/repository"
	"github.com/musiclib/backend/internal/services"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	cfg    *config.Config
	deps   Deps
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()

	db, err := gorm.Open(models.OpenSQLite(filepath.Join(dir, "catalog.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, models.Migrate(db))

	cfg := &config.Config{
		Env:                     "test",
		JWTSecret:               "test-secret",
		JWTAccessTokenDuration:  time.Hour,
		JWTRefreshTokenDuration: 2 * time.Hour,
		AdminUsername:           "admin",
		AdminEmail:              "admin@example.com",
		AdminPassword:           "Admin123!",
		BcryptCost:              4,
		StorageBackend:          "local",
		LocalAssetsPath:         filepath.Join(dir, "media"),
		TrackDefaultStatus:      "pending",
		StrictGenreSelection:    true,
	}
	log := zap.NewNop()

	blobs, err := services.NewBlobStore(cfg, log)
	require.NoError(t, err)
	store := repository.NewGormStore(db)

	deps := Deps{
		Config:   cfg,
		Log:      log,
		DB:       db,
		Auth:     services.NewAuthService(db, nil, cfg, log),
		Users:    services.NewUserService(db, cfg, log),
		Catalog:  services.NewCatalogService(store, blobs, log),
		Uploads:  services.NewUploadService(store, blobs, cfg, log),
		Genres:   services.NewGenreService(store, log),
		Artists:  services.NewArtistService(store, log),
		Albums:   services.NewAlbumService(store, log),
		Comments: services.NewCommentService(store, log),
		Audit:    services.NewAuditService(db, log),
	}
	require.NoError(t, deps.Users.CreateDefaultAdmin(context.Background()))

	return &testServer{t: t, router: NewRouter(deps), cfg: cfg, deps: deps}
}

func (s *testServer) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) json(method, path, token string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, token)
}

func (s *testServer) login(username, password string) string {
	w := s.json("POST", "/api/v1/auth/login", "", gin.H{"username": username, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

func (s *testServer) register(username string) string {
	w := s.json("POST", "/api/v1/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "Secret1!",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return s.login(username, "Secret1!")
}

type uploadForm struct {
	filename string
	payload  []byte
	fields   map[string]string
	genres   []string
}

func (s *testServer) upload(token string, f uploadForm) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range f.fields {
		require.NoError(s.t, mw.WriteField(k, v))
	}
	for _, g := range f.genres {
		require.NoError(s.t, mw.WriteField("genres", g))
	}
	if f.filename != "" {
		fw, err := mw.CreateFormFile("audio_file", f.filename)
		require.NoError(s.t, err)
		_, err = fw.Write(f.payload)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest("POST", "/api/v1/tracks", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.do(req, token)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type trackJSON struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	UploadedBy string `json:"uploaded_by"`
	AudioURL   string `json:"audio_url"`
	Album      *struct {
		Title string `json:"title"`
	} `json:"album"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
}

type pageJSON struct {
	Items       []trackJSON `json:"items"`
	Page        int         `json:"page"`
	PageSize    int         `json:"page_size"`
	TotalCount  int         `json:"total_count"`
	TotalPages  int         `json:"total_pages"`
	HasNext     bool        `json:"has_next"`
	HasPrevious bool        `json:"has_previous"`
}

type errorJSON struct {
	Error   string `json:"error"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

var payload = []byte("fake mp3 payload for tests")

func (s *testServer) seedApprovedTrack(token, adminToken string) trackJSON {
	w := s.json("POST", "/api/v1/admin/genres", adminToken, gin.H{"name": "Поп", "code": "pop"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	w = s.upload(token, uploadForm{
		filename: "prosti.mp3",
		payload:  payload,
		fields:   map[string]string{"title": "Прости", "artist_names": "Земфира", "album_title": "Вендетта"},
		genres:   []string{"pop"},
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	tr := decode[trackJSON](s.t, w)

	w = s.json("PUT", fmt.Sprintf("/api/v1/admin/tracks/%d/status", tr.ID), adminToken, gin.H{"status": "approved"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	return tr
}
