package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/trueup/internal/lifecycle"
)

type CreateWorkOrderRequest struct {
	OwnerID        snowflake.ID
	CounterpartyID snowflake.ID
	Title          string
	Metadata       map[string]any
}

type TransitionRequest struct {
	ID              snowflake.ID
	ActingPrincipal snowflake.ID
	RequestedStatus lifecycle.Status
}

type Service interface {
	Create(ctx context.Context, req CreateWorkOrderRequest) (WorkOrder, error)
	GetByID(ctx context.Context, id snowflake.ID) (WorkOrder, error)
	ListByParticipant(ctx context.Context, principalID snowflake.ID) ([]WorkOrder, error)
	// Transition validates the edge against the lifecycle table and the
	// acting principal against the edge's allowed party before writing.
	Transition(ctx context.Context, req TransitionRequest) (WorkOrder, error)
	// Delete removes an order that never left its initial unassigned
	// status; anything further along must be cancelled instead.
	Delete(ctx context.Context, id, actingPrincipal snowflake.ID) error
}
