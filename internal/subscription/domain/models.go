// Package domain contains persistence models for processor-mirrored
// subscriptions.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/trueup/internal/lifecycle"
	"gorm.io/datatypes"
)

// Subscription mirrors the processor's subscription object for one owner.
// The primary key is the processor's subscription identifier; the processor
// is the system of record and every mirrored field reflects some state it
// reported at some point.
type Subscription struct {
	ID               string            `gorm:"primaryKey"`
	OwnerID          snowflake.ID      `gorm:"not null;index"`
	PriceID          string            `gorm:"type:text;not null"`
	ProductID        string            `gorm:"type:text;not null"`
	Status           lifecycle.Status  `gorm:"type:text;not null"`
	CurrentPeriodEnd time.Time         `gorm:"not null"`
	Metadata         datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }

// ActiveEquivalent reports whether the subscription grants access to paid
// functionality.
func (s Subscription) ActiveEquivalent() bool {
	return s.Status == lifecycle.SubscriptionActive || s.Status == lifecycle.SubscriptionTrialing
}
