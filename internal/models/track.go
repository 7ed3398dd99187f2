package models

import (
	"time"

	"github.com/google/uuid"
)

// TrackStatus gates public visibility of a track
type TrackStatus string

const (
	TrackStatusPending  TrackStatus = "pending"
	TrackStatusApproved TrackStatus = "approved"
	TrackStatusRejected TrackStatus = "rejected"
)

// Valid reports whether s is one of the known statuses
func (s TrackStatus) Valid() bool {
	switch s {
	case TrackStatusPending, TrackStatusApproved, TrackStatusRejected:
		return true
	}
	return false
}

// Track is an uploaded audio file plus its catalog metadata.
// The audio payload lives in the blob store under AudioKey.
type Track struct {
	ID     uint        `gorm:"primaryKey" json:"id"`
	Title  string      `gorm:"size:200;not null;index" json:"title"`
	Status TrackStatus `gorm:"size:16;not null;default:'pending';index" json:"status"`

	// Audio blob
	AudioKey      string `gorm:"size:512;not null" json:"-"`
	AudioFilename string `gorm:"size:255" json:"audio_filename"`
	AudioMimeType string `gorm:"size:100" json:"audio_mime_type"`
	AudioSize     int64  `json:"audio_size"`
	AudioChecksum string `gorm:"size:64" json:"audio_checksum"`
	Duration      int    `gorm:"default:0" json:"duration"` // seconds, 0 if unknown

	// Uploader
	UploaderName string     `gorm:"size:100;not null" json:"uploaded_by"`
	UploadedByID *uuid.UUID `gorm:"type:uuid;index" json:"uploaded_by_id,omitempty"`
	UploadedAt   time.Time  `gorm:"<-:create;autoCreateTime;index" json:"uploaded_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	AlbumID *uint `gorm:"index" json:"album_id"`

	// Relations
	UploadedBy *User    `gorm:"foreignKey:UploadedByID;constraint:OnDelete:SET NULL" json:"-"`
	Album      *Album   `gorm:"foreignKey:AlbumID;constraint:OnDelete:SET NULL" json:"album"`
	Artists    []Artist `gorm:"many2many:track_artists" json:"artists"`
	Genres     []Genre  `gorm:"many2many:track_genres" json:"genres"`
}

// OwnedBy reports whether userID is the recorded uploader
func (t *Track) OwnedBy(userID uuid.UUID) bool {
	return t.UploadedByID != nil && userID != uuid.Nil && *t.UploadedByID == userID
}
