package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	GetByID(ctx context.Context, id string) (Subscription, error)
	ListByOwner(ctx context.Context, ownerID snowflake.ID) ([]Subscription, error)
	// GetAuthoritative resolves the single subscription that authorization
	// decisions should trust for an owner, applying the tie-break order.
	GetAuthoritative(ctx context.Context, ownerID snowflake.ID) (Subscription, error)
}
