package models

import "time"

// PendingTransaction tracks one in-flight gateway payment, keyed by the
// authority token Zarinpal issued for it. The row is deleted on any terminal
// resolution, so at most one live row exists per authority.
//
// Amount is what the gateway charges after the discount; OriginalAmount is
// what the wallet gets credited with on success.
type PendingTransaction struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time

	Authority      string `gorm:"uniqueIndex;type:varchar(64);not null"`
	PhoneNumber    string `gorm:"index;not null"`
	Amount         int64  `gorm:"not null"`
	OriginalAmount int64  `gorm:"not null"`
	SessionCount   int    `gorm:"not null"`
	DiscountCode   string `gorm:"type:varchar(50)"`
}
