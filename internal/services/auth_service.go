package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/musiclib/backend/internal/config"
	"github.com/musiclib/backend/internal/models"
	"github.com/musiclib/backend/pkg/crypto"
	jwtpkg "github.com/musiclib/backend/pkg/jwt"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TokenPair is returned on login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AuthService issues and checks JWTs. redis is optional; without it logout
// cannot revoke access tokens before they expire.
type AuthService struct {
	db    *gorm.DB
	redis *redis.Client
	cfg   *config.Config
	log   *zap.Logger
}

func NewAuthService(db *gorm.DB, redis *redis.Client, cfg *config.Config, log *zap.Logger) *AuthService {
	return &AuthService{
		db:    db,
		redis: redis,
		cfg:   cfg,
		log:   log.Named("auth"),
	}
}

// Register creates a regular user account. Format checks happen in the handler.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	var existing models.User
	err := s.db.WithContext(ctx).Where("username = ? OR email = ?", username, email).First(&existing).Error
	if err == nil {
		if existing.Username == username {
			return nil, fieldError("username", ErrConflict, "Имя пользователя уже занято.")
		}
		return nil, fieldError("email", ErrConflict, "Email уже зарегистрирован.")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := crypto.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
		IsActive: true,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()), zap.String("username", username))
	return user, nil
}

// Login authenticates a user and returns a fresh token pair.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, *models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !user.IsActive || !crypto.CheckPassword(password, user.Password) {
		s.log.Info("login rejected", zap.String("username", username))
		return nil, nil, ErrInvalidCredentials
	}

	accessToken, err := jwtpkg.GenerateToken(user.ID.String(), jwtpkg.AccessToken, s.cfg.JWTSecret, s.cfg.JWTAccessTokenDuration)
	if err != nil {
		return nil, nil, err
	}
	refreshToken, err := jwtpkg.GenerateToken(user.ID.String(), jwtpkg.RefreshToken, s.cfg.JWTSecret, s.cfg.JWTRefreshTokenDuration)
	if err != nil {
		return nil, nil, err
	}

	refreshTokenModel := &models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshTokenDuration),
	}
	if err := s.db.WithContext(ctx).Omit("User").Create(refreshTokenModel).Error; err != nil {
		return nil, nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.cfg.JWTAccessTokenDuration.Seconds()),
	}, &user, nil
}

// RefreshToken exchanges a stored refresh token for a new access token.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := jwtpkg.ValidateTokenOfType(refreshToken, s.cfg.JWTSecret, jwtpkg.RefreshToken)
	if err != nil {
		return "", ErrUnauthorized
	}

	var tokenModel models.RefreshToken
	if err := s.db.WithContext(ctx).Where("token = ?", refreshToken).First(&tokenModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUnauthorized
		}
		return "", err
	}
	if time.Now().After(tokenModel.ExpiresAt) {
		return "", ErrUnauthorized
	}

	return jwtpkg.GenerateToken(claims.UserID, jwtpkg.AccessToken, s.cfg.JWTSecret, s.cfg.JWTAccessTokenDuration)
}

// Logout drops every refresh token of the user and blacklists accessToken
// for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID, accessToken string) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
		return err
	}
	if s.redis == nil || accessToken == "" {
		return nil
	}

	claims, err := jwtpkg.ValidateToken(accessToken, s.cfg.JWTSecret)
	if err != nil {
		return nil
	}
	if err := s.redis.Set(ctx, blacklistKey(accessToken), "1", claims.TTL()).Err(); err != nil {
		s.log.Warn("could not blacklist access token", zap.Error(err))
	}
	return nil
}

// ValidateAccessToken checks signature, type and the redis blacklist. A
// redis outage does not block requests.
func (s *AuthService) ValidateAccessToken(ctx context.Context, token string) (*jwtpkg.Claims, error) {
	claims, err := jwtpkg.ValidateTokenOfType(token, s.cfg.JWTSecret, jwtpkg.AccessToken)
	if err != nil {
		return nil, ErrUnauthorized
	}

	if s.redis != nil {
		exists, err := s.redis.Exists(ctx, blacklistKey(token)).Result()
		if err != nil {
			s.log.Warn("could not check token blacklist", zap.Error(err))
		} else if exists > 0 {
			return nil, ErrUnauthorized
		}
	}
	return claims, nil
}

// Authenticate resolves an access token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.ValidateAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUnauthorized
	}
	return &user, nil
}

// CleanupExpiredTokens removes expired refresh tokens
func (s *AuthService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}

func blacklistKey(token string) string {
	return fmt.Sprintf("blacklist:token:%s", token)
}
