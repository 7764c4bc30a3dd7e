// Package domain contains persistence models for processor-connected payout
// accounts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PayoutAccount mirrors the processor's connected account capabilities for
// one owner. The three booleans must never stay more permissive than the
// processor's last known truth for more than one reconciliation cycle.
type PayoutAccount struct {
	ID               string       `gorm:"primaryKey"`
	OwnerID          snowflake.ID `gorm:"not null;uniqueIndex"`
	DetailsSubmitted bool         `gorm:"not null;default:false"`
	ChargesEnabled   bool         `gorm:"not null;default:false"`
	PayoutsEnabled   bool         `gorm:"not null;default:false"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PayoutAccount) TableName() string { return "payout_accounts" }
