package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBDriver   string // "postgres" | "sqlite"
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT
	JWTSecret               string
	JWTAccessTokenDuration  time.Duration
	JWTRefreshTokenDuration time.Duration

	// Admin
	AdminUsername string
	AdminPassword string
	AdminEmail    string

	// Audio storage
	StorageBackend         string // "local" | "s3"
	LocalAssetsPath        string
	MediaS3Endpoint        string
	MediaS3Region          string
	MediaS3AccessKeyID     string
	MediaS3SecretAccessKey string
	MediaS3UsePathStyle    bool
	MediaAudioBucket       string
	AudioURLTTL            time.Duration

	// Catalog policy
	TrackDefaultStatus   string
	AnonymousUploads     bool
	StrictGenreSelection bool

	// Security
	BcryptCost        int
	RateLimitRequests int
	RateLimitDuration time.Duration
	UploadDailyLimit  int
	CommentRateLimit  int
	CommentRateWindow time.Duration

	// CORS
	AllowedOrigins []string

	// Logging
	LogLevel  string
	LogFormat string
}

func New() *Config {
	return &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "musiclib"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "musiclib"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "musiclib.db"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// JWT
		JWTSecret:               getEnv("JWT_SECRET", "your-secret-key"),
		JWTAccessTokenDuration:  getEnvAsDuration("JWT_ACCESS_TOKEN_DURATION", "1h"),
		JWTRefreshTokenDuration: getEnvAsDuration("JWT_REFRESH_TOKEN_DURATION", "168h"),

		// Admin
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@localhost"),

		// Audio storage
		StorageBackend:         getEnv("STORAGE_BACKEND", "local"),
		LocalAssetsPath:        getEnv("LOCAL_ASSETS_PATH", "./data/media"),
		MediaS3Endpoint:        getEnv("MEDIA_S3_ENDPOINT", ""),
		MediaS3Region:          getEnv("MEDIA_S3_REGION", "us-east-1"),
		MediaS3AccessKeyID:     getEnv("MEDIA_S3_ACCESS_KEY_ID", ""),
		MediaS3SecretAccessKey: getEnv("MEDIA_S3_SECRET_ACCESS_KEY", ""),
		MediaS3UsePathStyle:    getEnvAsBool("MEDIA_S3_USE_PATH_STYLE", true),
		MediaAudioBucket:       getEnv("MEDIA_AUDIO_BUCKET", "musiclib-audio"),
		AudioURLTTL:            time.Duration(getEnvAsInt("AUDIO_URL_TTL_MINUTES", 15)) * time.Minute,

		// Catalog policy
		TrackDefaultStatus:   getEnv("TRACK_DEFAULT_STATUS", "pending"),
		AnonymousUploads:     getEnvAsBool("ANONYMOUS_UPLOADS", false),
		StrictGenreSelection: getEnvAsBool("STRICT_GENRE_SELECTION", true),

		// Security
		BcryptCost:        getEnvAsInt("BCRYPT_COST", 12),
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitDuration: getEnvAsDuration("RATE_LIMIT_DURATION", "1m"),
		UploadDailyLimit:  getEnvAsInt("UPLOAD_DAILY_LIMIT", 30),
		CommentRateLimit:  getEnvAsInt("COMMENT_RATE_LIMIT", 5),
		CommentRateWindow: getEnvAsDuration("COMMENT_RATE_WINDOW", "10m"),

		// CORS
		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver))
	}

	switch c.StorageBackend {
	case "local":
		if c.LocalAssetsPath == "" {
			errs = append(errs, errors.New("LOCAL_ASSETS_PATH is required for local storage"))
		}
	case "s3":
		if c.MediaAudioBucket == "" {
			errs = append(errs, errors.New("MEDIA_AUDIO_BUCKET is required for s3 storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be local or s3, got %q", c.StorageBackend))
	}

	switch c.TrackDefaultStatus {
	case "pending", "approved", "rejected":
	default:
		errs = append(errs, fmt.Errorf("TRACK_DEFAULT_STATUS must be pending, approved or rejected, got %q", c.TrackDefaultStatus))
	}

	if c.IsProduction() && c.JWTSecret == "your-secret-key" {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if c.UploadDailyLimit < 0 {
		errs = append(errs, errors.New("UPLOAD_DAILY_LIMIT must not be negative"))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	if duration, err := time.ParseDuration(defaultValue); err == nil {
		return duration
	}
	return time.Hour
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
