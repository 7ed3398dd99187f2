package models

import "time"

type Album struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:200;uniqueIndex;not null" json:"title"`
	Year      *int      `json:"year"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Artists []Artist `gorm:"many2many:album_artists" json:"artists"`
}
