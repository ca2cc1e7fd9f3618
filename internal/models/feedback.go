package models

import "time"

// Feedback is append-only. Rating is optional, 1 to 5 when present.
type Feedback struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time

	UserID  uint   `gorm:"index;not null"`
	Comment string `gorm:"type:text;not null"`
	Rating  *int
}
