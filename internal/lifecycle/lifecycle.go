// Package lifecycle defines the legal status transitions for billable
// entities. Everything here is a pure function over the transition tables;
// persistence and authorization live elsewhere.
package lifecycle

import "fmt"

type Status string

type EntityKind string

const (
	KindInvoice      EntityKind = "invoice"
	KindWorkOrder    EntityKind = "work_order"
	KindSubscription EntityKind = "subscription"
)

// Invoice statuses.
const (
	InvoiceOpen     Status = "OPEN"
	InvoiceClosed   Status = "CLOSED"
	InvoiceDisputed Status = "DISPUTED"
)

// Work order statuses.
const (
	WorkOrderUnassigned Status = "UNASSIGNED"
	WorkOrderAssigned   Status = "ASSIGNED"
	WorkOrderInProgress Status = "IN_PROGRESS"
	WorkOrderDeferred   Status = "DEFERRED"
	WorkOrderComplete   Status = "COMPLETE"
	WorkOrderCancelled  Status = "CANCELLED"
)

// Subscription statuses mirror the processor's vocabulary verbatim.
const (
	SubscriptionActive            Status = "active"
	SubscriptionTrialing          Status = "trialing"
	SubscriptionPastDue           Status = "past_due"
	SubscriptionIncomplete        Status = "incomplete"
	SubscriptionIncompleteExpired Status = "incomplete_expired"
	SubscriptionCanceled          Status = "canceled"
	SubscriptionUnpaid            Status = "unpaid"
	SubscriptionPaused            Status = "paused"
)

// Actor identifies which party on an entity may request a transition.
type Actor uint8

const (
	ActorOwner Actor = 1 << iota
	ActorCounterparty

	ActorEither = ActorOwner | ActorCounterparty
)

// IllegalTransitionError reports a (current, requested) pair with no edge in
// the entity's transition table. It is a user-facing validation failure, not
// a system error.
type IllegalTransitionError struct {
	Kind EntityKind
	From Status
	To   Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("%s: illegal transition %s -> %s", e.Kind, e.From, e.To)
}

var invoiceStatuses = []Status{InvoiceOpen, InvoiceClosed, InvoiceDisputed}

var workOrderStatuses = []Status{
	WorkOrderUnassigned,
	WorkOrderAssigned,
	WorkOrderInProgress,
	WorkOrderDeferred,
	WorkOrderComplete,
	WorkOrderCancelled,
}

var subscriptionStatuses = []Status{
	SubscriptionActive,
	SubscriptionTrialing,
	SubscriptionPastDue,
	SubscriptionIncomplete,
	SubscriptionIncompleteExpired,
	SubscriptionCanceled,
	SubscriptionUnpaid,
	SubscriptionPaused,
}

// invoiceEdges: an invoice closes on successful payment or enters dispute;
// both end states are terminal for status mutation.
var invoiceEdges = map[Status]map[Status]Actor{
	InvoiceOpen: {
		InvoiceClosed:   ActorEither,
		InvoiceDisputed: ActorCounterparty,
	},
}

// workOrderEdges: UNASSIGNED and ASSIGNED swing both ways while staffing,
// cancellation is owner-only and never past COMPLETE, and COMPLETE may be
// reverted to ASSIGNED by either party.
var workOrderEdges = map[Status]map[Status]Actor{
	WorkOrderUnassigned: {
		WorkOrderAssigned: ActorOwner,
	},
	WorkOrderAssigned: {
		WorkOrderUnassigned: ActorEither,
		WorkOrderInProgress: ActorCounterparty,
		WorkOrderCancelled:  ActorOwner,
	},
	WorkOrderInProgress: {
		WorkOrderDeferred:  ActorEither,
		WorkOrderComplete:  ActorCounterparty,
		WorkOrderCancelled: ActorOwner,
	},
	WorkOrderDeferred: {
		WorkOrderInProgress: ActorEither,
		WorkOrderCancelled:  ActorOwner,
	},
	WorkOrderComplete: {
		WorkOrderAssigned: ActorEither,
	},
}

// InitialStatus returns the status a newly created entity starts in.
func InitialStatus(kind EntityKind) Status {
	switch kind {
	case KindInvoice:
		return InvoiceOpen
	case KindWorkOrder:
		return WorkOrderUnassigned
	case KindSubscription:
		return SubscriptionIncomplete
	default:
		return ""
	}
}

// Statuses returns the closed status vocabulary for an entity kind.
func Statuses(kind EntityKind) []Status {
	switch kind {
	case KindInvoice:
		return invoiceStatuses
	case KindWorkOrder:
		return workOrderStatuses
	case KindSubscription:
		return subscriptionStatuses
	default:
		return nil
	}
}

// IsValidStatus reports whether s belongs to the kind's vocabulary.
func IsValidStatus(kind EntityKind, s Status) bool {
	for _, known := range Statuses(kind) {
		if known == s {
			return true
		}
	}
	return false
}

// NextStatus validates the requested transition and returns the resulting
// status. Subscriptions accept any transition between valid statuses because
// the processor is the system of record for them; invoices and work orders
// only move along their edge tables. Every rejected pair yields an
// IllegalTransitionError, never a silent no-op.
func NextStatus(kind EntityKind, current, requested Status) (Status, error) {
	switch kind {
	case KindSubscription:
		if IsValidStatus(kind, current) && IsValidStatus(kind, requested) {
			return requested, nil
		}
	case KindInvoice, KindWorkOrder:
		if _, ok := TransitionActor(kind, current, requested); ok {
			return requested, nil
		}
	}
	return "", &IllegalTransitionError{Kind: kind, From: current, To: requested}
}

// TransitionActor returns which party may request the given edge, and whether
// the edge exists at all.
func TransitionActor(kind EntityKind, current, requested Status) (Actor, bool) {
	var edges map[Status]map[Status]Actor
	switch kind {
	case KindInvoice:
		edges = invoiceEdges
	case KindWorkOrder:
		edges = workOrderEdges
	default:
		return 0, false
	}

	next, ok := edges[current]
	if !ok {
		return 0, false
	}
	actor, ok := next[requested]
	return actor, ok
}

// DeletableStatus reports whether an entity in the given status may be
// deleted outright instead of transitioned. Only a work order that was never
// assigned qualifies; invoices are payable artifacts and are kept.
func DeletableStatus(kind EntityKind, s Status) bool {
	return kind == KindWorkOrder && s == WorkOrderUnassigned
}
