package models

import "time"

// Purchase is an append-only ledger row. AmountPaid may be 0 for
// fully-discounted or free credits; RefID is the gateway reference when the
// purchase went through Zarinpal.
type Purchase struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"precision:3"`

	UserID      uint   `gorm:"index;not null"`
	AmountPaid  int64  `gorm:"not null"`
	RefID       string `gorm:"type:varchar(64);index"`
	Description string `gorm:"type:text"`
}
