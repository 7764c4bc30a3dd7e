package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// legalEdges mirrors the published transition contract for invoices and work
// orders. The sweep below asserts that every pair outside this set is
// rejected, never silently accepted.
var legalEdges = map[EntityKind]map[Status][]Status{
	KindInvoice: {
		InvoiceOpen: {InvoiceClosed, InvoiceDisputed},
	},
	KindWorkOrder: {
		WorkOrderUnassigned: {WorkOrderAssigned},
		WorkOrderAssigned:   {WorkOrderUnassigned, WorkOrderInProgress, WorkOrderCancelled},
		WorkOrderInProgress: {WorkOrderDeferred, WorkOrderComplete, WorkOrderCancelled},
		WorkOrderDeferred:   {WorkOrderInProgress, WorkOrderCancelled},
		WorkOrderComplete:   {WorkOrderAssigned},
	},
}

func isLegal(kind EntityKind, from, to Status) bool {
	for _, next := range legalEdges[kind][from] {
		if next == to {
			return true
		}
	}
	return false
}

func TestNextStatusExhaustiveSweep(t *testing.T) {
	for _, kind := range []EntityKind{KindInvoice, KindWorkOrder} {
		for _, from := range Statuses(kind) {
			for _, to := range Statuses(kind) {
				next, err := NextStatus(kind, from, to)

				if isLegal(kind, from, to) {
					require.NoError(t, err, "%s %s -> %s should be legal", kind, from, to)
					require.Equal(t, to, next)
					continue
				}

				require.Error(t, err, "%s %s -> %s should be rejected", kind, from, to)
				require.Empty(t, next)

				var illegal *IllegalTransitionError
				require.True(t, errors.As(err, &illegal))
				require.Equal(t, from, illegal.From)
				require.Equal(t, to, illegal.To)
			}
		}
	}
}

func TestNextStatusSubscriptionAcceptsAnyValidPair(t *testing.T) {
	for _, from := range Statuses(KindSubscription) {
		for _, to := range Statuses(KindSubscription) {
			next, err := NextStatus(KindSubscription, from, to)
			require.NoError(t, err)
			require.Equal(t, to, next)
		}
	}
}

func TestNextStatusRejectsUnknownStatus(t *testing.T) {
	_, err := NextStatus(KindSubscription, SubscriptionActive, Status("bogus"))
	require.Error(t, err)

	_, err = NextStatus(KindSubscription, Status("bogus"), SubscriptionActive)
	require.Error(t, err)

	_, err = NextStatus(KindWorkOrder, Status("bogus"), WorkOrderAssigned)
	require.Error(t, err)
}

func TestTransitionActorParties(t *testing.T) {
	actor, ok := TransitionActor(KindWorkOrder, WorkOrderUnassigned, WorkOrderAssigned)
	require.True(t, ok)
	require.Equal(t, ActorOwner, actor)

	actor, ok = TransitionActor(KindWorkOrder, WorkOrderAssigned, WorkOrderInProgress)
	require.True(t, ok)
	require.Equal(t, ActorCounterparty, actor)

	actor, ok = TransitionActor(KindWorkOrder, WorkOrderComplete, WorkOrderAssigned)
	require.True(t, ok)
	require.Equal(t, ActorEither, actor)

	actor, ok = TransitionActor(KindInvoice, InvoiceOpen, InvoiceDisputed)
	require.True(t, ok)
	require.Equal(t, ActorCounterparty, actor)

	_, ok = TransitionActor(KindWorkOrder, WorkOrderComplete, WorkOrderCancelled)
	require.False(t, ok)
}

func TestInitialStatus(t *testing.T) {
	require.Equal(t, InvoiceOpen, InitialStatus(KindInvoice))
	require.Equal(t, WorkOrderUnassigned, InitialStatus(KindWorkOrder))
	require.Equal(t, SubscriptionIncomplete, InitialStatus(KindSubscription))
}

func TestDeletableStatus(t *testing.T) {
	require.True(t, DeletableStatus(KindWorkOrder, WorkOrderUnassigned))
	require.False(t, DeletableStatus(KindWorkOrder, WorkOrderAssigned))
	require.False(t, DeletableStatus(KindWorkOrder, WorkOrderCancelled))
	require.False(t, DeletableStatus(KindInvoice, InvoiceOpen))
	require.False(t, DeletableStatus(KindSubscription, SubscriptionCanceled))
}
