package service

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	checkoutdomain "github.com/smallbiznis/trueup/internal/checkout/domain"
	"github.com/smallbiznis/trueup/internal/lifecycle"
	"github.com/smallbiznis/trueup/internal/processor"
	"github.com/smallbiznis/trueup/internal/reconcile"
	"github.com/smallbiznis/trueup/pkg/repository"
	"github.com/smallbiznis/trueup/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const paymentIntentSucceeded = "succeeded"

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	client   *processor.Client
	engine   *reconcile.Engine
	catalog  *checkoutdomain.Catalog
	identity repository.Repository[checkoutdomain.BillingIdentity]
	metrics  *telemetry.Metrics
}

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Client  *processor.Client
	Engine  *reconcile.Engine
	Catalog *checkoutdomain.Catalog
	Metrics *telemetry.Metrics `optional:"true"`
}

func NewService(p ServiceParam) checkoutdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("checkout.service"),
		client:   p.Client,
		engine:   p.Engine,
		catalog:  p.Catalog,
		identity: repository.ProvideStore[checkoutdomain.BillingIdentity](p.DB),
		metrics:  p.Metrics,
	}
}

// ProcessPayment implements domain.Service.
//
// The sequence is deliberately not transactional: the upsert into the store
// happens synchronously after the processor call and before any response, so
// once a subscription exists at the processor it also exists locally. The
// create-or-reuse step trusts the customer-update response to carry current
// subscription data; should the processor ever serve a stale read there, the
// store lookup inside the upsert still prevents a duplicate internal record.
func (s *Service) ProcessPayment(ctx context.Context, req checkoutdomain.ProcessPaymentRequest) (checkoutdomain.ProcessPaymentResponse, error) {
	if req.OwnerID == 0 {
		return checkoutdomain.ProcessPaymentResponse{}, checkoutdomain.ErrInvalidOwner
	}

	plan, ok := s.catalog.Plan(req.SelectedPlan)
	if !ok {
		return checkoutdomain.ProcessPaymentResponse{}, checkoutdomain.ErrUnknownPlan
	}

	var promotionID string
	if req.PromoCode != "" {
		promotionID, ok = s.catalog.PromotionID(req.PromoCode)
		if !ok {
			return checkoutdomain.ProcessPaymentResponse{}, checkoutdomain.ErrInvalidPromoCode
		}
	}

	identity, err := s.identity.FindOne(ctx, &checkoutdomain.BillingIdentity{OwnerID: req.OwnerID})
	if err != nil {
		return checkoutdomain.ProcessPaymentResponse{}, err
	}
	if identity == nil {
		return checkoutdomain.ProcessPaymentResponse{}, checkoutdomain.ErrNoBillingIdentity
	}

	// Step 1: attach the payment method to the owner's billing identity.
	if err := s.client.AttachPaymentMethod(ctx, req.PaymentMethodRef, identity.CustomerID); err != nil {
		return s.fail(err)
	}

	// Step 2: make it the default; the response carries the customer's
	// subscriptions so no extra round trip is needed for step 3.
	fields := url.Values{}
	fields.Set("invoice_settings[default_payment_method]", req.PaymentMethodRef)
	customer, err := s.client.UpdateCustomer(ctx, identity.CustomerID, fields)
	if err != nil {
		return s.fail(err)
	}

	// Step 3/4: reuse any subscription that has not expired incomplete,
	// otherwise create one.
	var snap *processor.Subscription
	reused := false
	for i := range customer.Subscriptions.Data {
		candidate := &customer.Subscriptions.Data[i]
		if candidate.Status != string(lifecycle.SubscriptionIncompleteExpired) {
			snap = candidate
			reused = true
			break
		}
	}

	if snap == nil {
		metadata := map[string]string{
			"owner_id": strconv.FormatInt(int64(req.OwnerID), 10),
		}
		for k, v := range req.RequestMetadata {
			metadata[k] = v
		}

		snap, err = s.client.CreateSubscription(ctx, processor.CreateSubscriptionParams{
			CustomerID:    identity.CustomerID,
			PriceID:       plan.PriceID,
			TrialDays:     s.catalog.TrialDays(plan),
			PromotionCode: promotionID,
			Metadata:      metadata,
		})
		if err != nil {
			return s.fail(err)
		}
	}

	// The upsert always records the processor's actual returned status,
	// incomplete included, before the payment outcome is judged.
	record, _, err := s.engine.UpsertSubscription(ctx, req.OwnerID, snap)
	if err != nil {
		return checkoutdomain.ProcessPaymentResponse{}, err
	}

	// Step 5: judge the payment outcome off the latest invoice's payment
	// intent. An already-live subscription needs no fresh payment.
	intentStatus := latestPaymentIntentStatus(snap)
	if intentStatus != paymentIntentSucceeded && !record.ActiveEquivalent() {
		s.metrics.ObserveCheckout("payment_required")
		return checkoutdomain.ProcessPaymentResponse{}, &checkoutdomain.PaymentRequiredError{
			Message: "payment did not complete (payment intent status: " + orUnknown(intentStatus) + ")",
		}
	}

	s.metrics.ObserveCheckout("succeeded")
	s.log.Info("checkout completed",
		zap.String("subscription_id", record.ID),
		zap.String("owner_id", req.OwnerID.String()),
		zap.Bool("reused", reused),
	)

	return checkoutdomain.ProcessPaymentResponse{
		Completion: checkoutdomain.CompletionInfo{
			SubscriptionID:      record.ID,
			Status:              string(record.Status),
			PaymentIntentStatus: intentStatus,
			Reused:              reused,
		},
		Subscription: record,
	}, nil
}

// fail wraps processor failures into the payment error surfaced to callers.
// The processor's own message passes through; transport-level details do
// not.
func (s *Service) fail(err error) (checkoutdomain.ProcessPaymentResponse, error) {
	s.metrics.ObserveCheckout("processor_error")

	var apiErr *processor.APIError
	if errors.As(err, &apiErr) {
		return checkoutdomain.ProcessPaymentResponse{}, &checkoutdomain.PaymentRequiredError{
			Message: apiErr.Message,
			Err:     err,
		}
	}
	return checkoutdomain.ProcessPaymentResponse{}, &checkoutdomain.PaymentRequiredError{
		Message: "payment processor unavailable",
		Err:     err,
	}
}

func latestPaymentIntentStatus(snap *processor.Subscription) string {
	if snap == nil || snap.LatestInvoice == nil || snap.LatestInvoice.PaymentIntent == nil {
		return ""
	}
	return snap.LatestInvoice.PaymentIntent.Status
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
