package models

import (
	"time"

	"gorm.io/datatypes"
)

// PaymentConfig stores one gateway configuration (merchant id, endpoints) as
// a JSON blob so new gateways can be added without a schema change. Seeded
// from the environment at boot when the table is empty.
type PaymentConfig struct {
	ID            uint           `gorm:"primarykey"`
	UUID          string         `gorm:"uniqueIndex;type:varchar(36);not null"`
	Name          string         `gorm:"type:varchar(100);not null;default:'Payment Method'"`
	PaymentMethod string         `gorm:"type:varchar(50);not null"` // e.g. "zarinpal"
	Config        datatypes.JSON `gorm:"type:json;not null"`
	Enable        bool           `gorm:"default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DiscountCode maps a code to a percentage off. The table is configuration
// data seeded from the environment, not hard-coded logic.
type DiscountCode struct {
	ID        uint   `gorm:"primarykey"`
	Code      string `gorm:"uniqueIndex;type:varchar(50);not null"`
	Percent   int    `gorm:"not null"` // 0..100
	CreatedAt time.Time
	UpdatedAt time.Time
}
