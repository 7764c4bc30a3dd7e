// Package authz is the single choke-point for lifecycle-mutation
// authorization. Every mutating path on invoices, work orders, and
// subscription-adjacent records must call Authorize before touching the
// store.
package authz

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/trueup/internal/lifecycle"
)

// ForbiddenError carries the human-readable reason a mutation was refused.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	if e.Reason == "" {
		return "forbidden"
	}
	return fmt.Sprintf("forbidden: %s", e.Reason)
}

// Request describes one authorization check. RequiredPrincipalID is the value
// of whichever entity field must match the acting principal for this
// operation (owner for owner-only edges, counterparty for theirs).
// ForbiddenStatusReasons maps statuses in which the operation is refused to
// the reason reported to the caller.
type Request struct {
	ActingPrincipalID      snowflake.ID
	RequiredPrincipalID    snowflake.ID
	ForbiddenStatusReasons map[lifecycle.Status]string
}

// Authorize enforces "only the authorized principal may act" and "not while
// in a forbidden status", in that order. The wrong-principal check runs
// first so a caller probing someone else's entity learns nothing about its
// status.
func Authorize(status lifecycle.Status, req Request) error {
	if req.ActingPrincipalID == 0 || req.ActingPrincipalID != req.RequiredPrincipalID {
		return &ForbiddenError{Reason: "principal is not permitted to act on this record"}
	}

	if reason, ok := req.ForbiddenStatusReasons[status]; ok {
		return &ForbiddenError{Reason: reason}
	}

	return nil
}

// AuthorizeParty resolves the required principal from the transition table's
// actor flag: owner-only edges must match ownerID, counterparty-only edges
// must match counterpartyID, and either-party edges accept both.
func AuthorizeParty(status lifecycle.Status, actor lifecycle.Actor, acting, ownerID, counterpartyID snowflake.ID, forbidden map[lifecycle.Status]string) error {
	var required snowflake.ID
	switch actor {
	case lifecycle.ActorOwner:
		required = ownerID
	case lifecycle.ActorCounterparty:
		required = counterpartyID
	case lifecycle.ActorEither:
		if acting == ownerID || acting == counterpartyID {
			required = acting
		}
	}

	return Authorize(status, Request{
		ActingPrincipalID:      acting,
		RequiredPrincipalID:    required,
		ForbiddenStatusReasons: forbidden,
	})
}
