package authz

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/trueup/internal/lifecycle"
	"github.com/stretchr/testify/require"
)

const (
	owner        = snowflake.ID(1001)
	counterparty = snowflake.ID(2002)
	stranger     = snowflake.ID(3003)
)

func TestAuthorizeAllowsMatchingPrincipal(t *testing.T) {
	err := Authorize(lifecycle.InvoiceOpen, Request{
		ActingPrincipalID:   owner,
		RequiredPrincipalID: owner,
	})
	require.NoError(t, err)
}

func TestAuthorizeRejectsWrongPrincipal(t *testing.T) {
	err := Authorize(lifecycle.InvoiceOpen, Request{
		ActingPrincipalID:   stranger,
		RequiredPrincipalID: owner,
	})
	var forbidden *ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	require.Equal(t, "principal is not permitted to act on this record", forbidden.Reason)
}

func TestAuthorizeRejectsForbiddenStatus(t *testing.T) {
	err := Authorize(lifecycle.InvoiceClosed, Request{
		ActingPrincipalID:   owner,
		RequiredPrincipalID: owner,
		ForbiddenStatusReasons: map[lifecycle.Status]string{
			lifecycle.InvoiceClosed: "invoice is closed",
		},
	})
	var forbidden *ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	require.Equal(t, "invoice is closed", forbidden.Reason)
}

// When both rejections apply the wrong-principal one must win, so a caller
// probing someone else's record learns nothing about its status.
func TestAuthorizePrincipalCheckedBeforeStatus(t *testing.T) {
	err := Authorize(lifecycle.InvoiceClosed, Request{
		ActingPrincipalID:   stranger,
		RequiredPrincipalID: owner,
		ForbiddenStatusReasons: map[lifecycle.Status]string{
			lifecycle.InvoiceClosed: "invoice is closed",
		},
	})
	var forbidden *ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	require.Equal(t, "principal is not permitted to act on this record", forbidden.Reason)
}

func TestAuthorizeRejectsZeroPrincipal(t *testing.T) {
	err := Authorize(lifecycle.InvoiceOpen, Request{
		ActingPrincipalID:   0,
		RequiredPrincipalID: 0,
	})
	require.Error(t, err)
}

func TestAuthorizePartyActorResolution(t *testing.T) {
	cases := []struct {
		name    string
		actor   lifecycle.Actor
		acting  snowflake.ID
		allowed bool
	}{
		{"owner edge, owner acts", lifecycle.ActorOwner, owner, true},
		{"owner edge, counterparty acts", lifecycle.ActorOwner, counterparty, false},
		{"counterparty edge, counterparty acts", lifecycle.ActorCounterparty, counterparty, true},
		{"counterparty edge, owner acts", lifecycle.ActorCounterparty, owner, false},
		{"either edge, owner acts", lifecycle.ActorEither, owner, true},
		{"either edge, counterparty acts", lifecycle.ActorEither, counterparty, true},
		{"either edge, stranger acts", lifecycle.ActorEither, stranger, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := AuthorizeParty(lifecycle.WorkOrderAssigned, tc.actor, tc.acting, owner, counterparty, nil)
			if tc.allowed {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}
