package entities

import "time"

// DefaultAuthor is stored when a submission leaves the name blank.
const DefaultAuthor = "Anonymous"

type Quote struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Text       string    `gorm:"type:text;not null" json:"quote"`
	Normalized string    `gorm:"type:text;not null" json:"-"`
	Digest     string    `gorm:"uniqueIndex;size:64;not null" json:"-"` // BLAKE2b-256 of Normalized
	Author     string    `gorm:"index;size:32;not null" json:"author"`
	Created    time.Time `gorm:"not null" json:"created"`
}

func (Quote) TableName() string {
	return "quotes"
}
