package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records one administrative change to the catalog
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	AdminID    uuid.UUID `gorm:"type:uuid;not null;index" json:"admin_id"`
	Admin      *User     `gorm:"foreignKey:AdminID;constraint:OnDelete:CASCADE" json:"admin,omitempty"`
	Action     string    `gorm:"size:100;not null;index" json:"action"` // e.g. "moderate_track", "delete_comment"
	TargetType string    `gorm:"size:50;not null" json:"target_type"`    // "track", "genre", "artist", "album", "comment"
	TargetID   uint      `gorm:"not null" json:"target_id"`
	Details    string    `gorm:"type:text" json:"details,omitempty"` // JSON object
	IPAddress  string    `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent  string    `gorm:"type:text" json:"user_agent,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
