package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownPlan       = errors.New("unknown_plan")
	ErrInvalidPromoCode  = errors.New("invalid_promo_code")
	ErrNoBillingIdentity = errors.New("no_billing_identity")
	ErrInvalidOwner      = errors.New("invalid_owner")
)

// PaymentRequiredError is any failure inside the checkout sequence: a
// processor rejection or a payment intent that did not reach succeeded. The
// processor's own message is carried through to the caller.
type PaymentRequiredError struct {
	Message string
	Err     error
}

func (e *PaymentRequiredError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("payment required: %s", e.Message)
	}
	return "payment required"
}

func (e *PaymentRequiredError) Unwrap() error { return e.Err }
