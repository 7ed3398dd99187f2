package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/musiclib/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	suspiciousWindow  = 5 * time.Minute
	suspiciousDeletes = 10
)

// AuditEntry describes one admin action.
type AuditEntry struct {
	AdminID    uuid.UUID
	Action     string
	TargetType string
	TargetID   uint
	Details    map[string]any
	IPAddress  string
	UserAgent  string
}

// AuditFilter narrows the audit listing. Zero fields match everything.
type AuditFilter struct {
	AdminID *uuid.UUID
	Action  string
}

type AuditService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAuditService(db *gorm.DB, log *zap.Logger) *AuditService {
	return &AuditService{db: db, log: log.Named("audit")}
}

// Record stores e and warns when the admin deletes unusually much.
func (s *AuditService) Record(ctx context.Context, e AuditEntry) error {
	entry := &models.AuditLog{
		AdminID:    e.AdminID,
		Action:     e.Action,
		TargetType: e.TargetType,
		TargetID:   e.TargetID,
		IPAddress:  e.IPAddress,
		UserAgent:  e.UserAgent,
	}
	if len(e.Details) > 0 {
		if b, err := json.Marshal(e.Details); err == nil {
			entry.Details = string(b)
		}
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return err
	}

	if strings.HasPrefix(e.Action, "delete_") {
		s.checkSuspiciousActivity(ctx, e.AdminID)
	}
	return nil
}

func (s *AuditService) checkSuspiciousActivity(ctx context.Context, adminID uuid.UUID) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.AuditLog{}).
		Where("admin_id = ? AND action LIKE ? AND created_at > ?", adminID, "delete_%", time.Now().Add(-suspiciousWindow)).
		Count(&count).Error
	if err != nil {
		s.log.Warn("failed to count recent deletions", zap.Error(err))
		return
	}
	if count >= suspiciousDeletes {
		s.log.Warn("suspicious admin activity",
			zap.String("admin_id", adminID.String()),
			zap.Int64("deletions", count),
			zap.Duration("window", suspiciousWindow),
		)
	}
}

// List pages the audit log, newest first.
func (s *AuditService) List(ctx context.Context, f AuditFilter, page, size int) (*Page[models.AuditLog], error) {
	return fetchPage(APIPages, page, size, func(limit, offset int) ([]models.AuditLog, int64, error) {
		query := s.db.WithContext(ctx).Model(&models.AuditLog{})
		if f.AdminID != nil {
			query = query.Where("admin_id = ?", *f.AdminID)
		}
		if f.Action != "" {
			query = query.Where("action = ?", f.Action)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			return nil, 0, err
		}
		var logs []models.AuditLog
		err := query.Preload("Admin").Order("created_at DESC").Order("id DESC").
			Offset(offset).Limit(limit).Find(&logs).Error
		return logs, total, err
	})
}

// ActionCount returns how many times adminID performed action since the given time.
func (s *AuditService) ActionCount(ctx context.Context, adminID uuid.UUID, action string, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.AuditLog{}).
		Where("admin_id = ? AND action = ? AND created_at > ?", adminID, action, since).
		Count(&count).Error
	return count, err
}
