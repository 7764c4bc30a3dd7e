package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type CreateAccountRequest struct {
	OwnerID snowflake.ID
	Email   string
	Country string
}

type Service interface {
	// Create pairs one processor account-creation call with one internal
	// record insert; an owner gets exactly one payout account.
	Create(ctx context.Context, req CreateAccountRequest) (PayoutAccount, error)
	GetByOwner(ctx context.Context, ownerID snowflake.ID) (PayoutAccount, error)
	// Refresh re-fetches the processor's account state and reconciles it
	// into the store on demand.
	Refresh(ctx context.Context, id string) (PayoutAccount, bool, error)
}
