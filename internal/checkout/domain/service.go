package domain

import (
	"context"

	subscriptiondomain "github.com/smallbiznis/trueup/internal/subscription/domain"
)

type ProcessPaymentResponse struct {
	Completion   CompletionInfo
	Subscription subscriptiondomain.Subscription
}

type Service interface {
	// ProcessPayment runs the full checkout sequence: attach the payment
	// method, make it the default, reuse a live subscription from the
	// customer-update response or create a new one, persist the result,
	// and fail with PaymentRequiredError unless the latest invoice's
	// payment intent succeeded.
	ProcessPayment(ctx context.Context, req ProcessPaymentRequest) (ProcessPaymentResponse, error)
}
