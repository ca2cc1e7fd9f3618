package models

import "time"

// User is keyed by phone number. Wallet balance is in Toman.
// AvailableSessionMinutes accumulates and is consumed in 20-minute blocks.
type User struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	PhoneNumber string `gorm:"uniqueIndex;not null"`

	// Optional profile, filled by the user after signup
	Name       string `gorm:"type:text"`
	Gender     string `gorm:"type:text"`
	Age        string `gorm:"type:text"`
	Education  string `gorm:"type:text"`
	Job        string `gorm:"type:text"`
	HealthNote string `gorm:"type:text"`

	WalletBalance           int64      `gorm:"not null;default:0"`
	FreeChatUsed            bool       `gorm:"not null;default:false"` // one-way false -> true
	AvailableSessionMinutes int        `gorm:"not null;default:0"`
	SessionEndTime          *time.Time // set while a chat window is active

	Version int `gorm:"default:1"`
}

// SessionRemainingSeconds returns the seconds left in the active chat
// window, or 0 when no window is active.
func (u *User) SessionRemainingSeconds(now time.Time) int {
	if u.SessionEndTime == nil || !u.SessionEndTime.After(now) {
		return 0
	}
	return int(u.SessionEndTime.Sub(now).Seconds())
}
