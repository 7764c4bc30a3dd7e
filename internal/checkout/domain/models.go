// Package domain contains the checkout flow's request/response contracts and
// the billing-identity lookup table.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// BillingIdentity links an owner to their customer record at the processor.
// It is written once at registration time; checkout only reads it.
type BillingIdentity struct {
	OwnerID    snowflake.ID `gorm:"primaryKey"`
	CustomerID string       `gorm:"type:text;not null;uniqueIndex"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (BillingIdentity) TableName() string { return "billing_identities" }

// Plan is one sellable plan resolved from the startup catalog.
type Plan struct {
	Code      string
	PriceID   string
	ProductID string
	TrialDays int
}

type ProcessPaymentRequest struct {
	OwnerID          snowflake.ID
	SelectedPlan     string
	PaymentMethodRef string
	PromoCode        string
	RequestMetadata  map[string]string
}

type CompletionInfo struct {
	SubscriptionID      string
	Status              string
	PaymentIntentStatus string
	Reused              bool
}
