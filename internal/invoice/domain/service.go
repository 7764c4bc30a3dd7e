package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/trueup/internal/lifecycle"
)

type CreateInvoiceRequest struct {
	OwnerID         snowflake.ID
	CounterpartyID  snowflake.ID
	AmountCents     int64
	Currency        string
	PaymentIntentID string
	Metadata        map[string]any
}

type UpdateAmountRequest struct {
	ID              snowflake.ID
	ActingPrincipal snowflake.ID
	AmountCents     int64
}

type TransitionRequest struct {
	ID              snowflake.ID
	ActingPrincipal snowflake.ID
	RequestedStatus lifecycle.Status
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (Invoice, error)
	GetByID(ctx context.Context, id snowflake.ID) (Invoice, error)
	ListByParticipant(ctx context.Context, principalID snowflake.ID) ([]Invoice, error)
	// UpdateAmount is owner-only and refused once the invoice is closed or
	// disputed.
	UpdateAmount(ctx context.Context, req UpdateAmountRequest) (Invoice, error)
	// Transition is the principal-driven path (a counterparty opening a
	// dispute).
	Transition(ctx context.Context, req TransitionRequest) (Invoice, error)
	// SettleByPaymentIntent closes the invoice tied to a succeeded
	// processor payment. Webhook-driven; the processor is the acting
	// authority so no principal check applies, but the transition still
	// goes through the state machine.
	SettleByPaymentIntent(ctx context.Context, paymentIntentID string) (Invoice, error)
	// DisputeByPaymentIntent marks the invoice disputed off a processor
	// dispute event.
	DisputeByPaymentIntent(ctx context.Context, paymentIntentID string) (Invoice, error)
}
