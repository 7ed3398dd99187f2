package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/musiclib/backend/internal/config"
	"github.com/musiclib/backend/internal/models"
	"github.com/musiclib/backend/pkg/crypto"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserService struct {
	db  *gorm.DB
	cfg *config.Config
	log *zap.Logger
}

func NewUserService(db *gorm.DB, cfg *config.Config, log *zap.Logger) *UserService {
	return &UserService{db: db, cfg: cfg, log: log.Named("users")}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateDefaultAdmin creates the bootstrap administrator from ADMIN_* settings.
// It does nothing when ADMIN_PASSWORD is unset or the account exists.
func (s *UserService) CreateDefaultAdmin(ctx context.Context) error {
	if s.cfg.AdminPassword == "" {
		s.log.Debug("ADMIN_PASSWORD not set, skipping default admin")
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", s.cfg.AdminUsername).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := crypto.HashPassword(s.cfg.AdminPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: s.cfg.AdminUsername,
		Email:    s.cfg.AdminEmail,
		Password: hashedPassword,
		IsAdmin:  true,
		IsActive: true,
	}
	if err := s.db.WithContext(ctx).Create(admin).Error; err != nil {
		return err
	}
	s.log.Info("default admin created", zap.String("username", admin.Username))
	return nil
}
