package reconcile

import (
	"time"

	"github.com/smallbiznis/trueup/internal/lifecycle"
	"github.com/smallbiznis/trueup/internal/processor"
)

// SubscriptionFields is a processor subscription snapshot translated into
// the internal record's canonical field names and types.
type SubscriptionFields struct {
	ID               string
	PriceID          string
	ProductID        string
	Status           lifecycle.Status
	CurrentPeriodEnd time.Time
	Created          time.Time
}

// NormalizeSubscription maps the processor's field names and units onto the
// internal ones: epoch seconds become UTC timestamps and the price/product
// references are extracted whether the processor returned them collapsed or
// expanded. Total for any well-formed snapshot; never calls the processor or
// the store.
func NormalizeSubscription(snap *processor.Subscription) SubscriptionFields {
	fields := SubscriptionFields{
		ID:               snap.ID,
		Status:           lifecycle.Status(snap.Status),
		CurrentPeriodEnd: time.Unix(snap.CurrentPeriodEnd, 0).UTC(),
		Created:          time.Unix(snap.Created, 0).UTC(),
	}

	if len(snap.Items.Data) > 0 {
		price := snap.Items.Data[0].Price
		fields.PriceID = price.ID
		fields.ProductID = price.Product.ID
	}

	return fields
}

// PayoutAccountFields is a processor account snapshot translated into the
// internal record's mirrored booleans.
type PayoutAccountFields struct {
	ID               string
	DetailsSubmitted bool
	ChargesEnabled   bool
	PayoutsEnabled   bool
}

// NormalizeAccount maps the processor's connected-account capabilities onto
// the internal mirror.
func NormalizeAccount(snap *processor.Account) PayoutAccountFields {
	return PayoutAccountFields{
		ID:               snap.ID,
		DetailsSubmitted: snap.DetailsSubmitted,
		ChargesEnabled:   snap.ChargesEnabled,
		PayoutsEnabled:   snap.PayoutsEnabled,
	}
}
