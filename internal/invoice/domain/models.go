// Package domain contains persistence models for internal invoices.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/trueup/internal/lifecycle"
	"gorm.io/datatypes"
)

// Invoice is a payable artifact between an owner (the issuer) and a
// counterparty (the payer). PaymentIntentID links the invoice to the
// processor payment that settles it, and is the secondary index webhook
// handlers resolve events through.
type Invoice struct {
	ID              snowflake.ID      `gorm:"primaryKey"`
	OwnerID         snowflake.ID      `gorm:"not null;index"`
	CounterpartyID  snowflake.ID      `gorm:"index"`
	AmountCents     int64             `gorm:"not null"`
	Currency        string            `gorm:"type:text;not null"`
	Status          lifecycle.Status  `gorm:"type:text;not null"`
	PaymentIntentID string            `gorm:"type:text;index"`
	Metadata        datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }
