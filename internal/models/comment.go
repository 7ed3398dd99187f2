package models

import "time"

type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TrackID    uint      `gorm:"not null;index" json:"track"`
	AuthorName string    `gorm:"size:100;not null" json:"author_name"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	CreatedAt  time.Time `gorm:"<-:create;autoCreateTime" json:"created_at"`

	// Relations
	Track *Track `gorm:"foreignKey:TrackID;constraint:OnDelete:CASCADE" json:"-"`
}
