package models

// Genre is an admin-managed vocabulary entry. Code is the stable identifier
// used in filters and upload selections.
type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Code string `gorm:"size:50;uniqueIndex;not null" json:"code"`
}
