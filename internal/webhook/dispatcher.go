// Package webhook verifies inbound processor events and routes them to
// handlers. Verification fails closed; everything after verification is
// acknowledged, and a handler failure is contained to its own event.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/smallbiznis/trueup/internal/config"
	invoicedomain "github.com/smallbiznis/trueup/internal/invoice/domain"
	"github.com/smallbiznis/trueup/internal/processor"
	"github.com/smallbiznis/trueup/internal/reconcile"
	"github.com/smallbiznis/trueup/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Handler processes one verified event. A nil entry in the dispatch table
// means the type is known and intentionally not acted on.
type Handler func(ctx context.Context, event *processor.Event) error

type Service struct {
	log        *zap.Logger
	secret     string
	engine     *reconcile.Engine
	invoiceSvc invoicedomain.Service
	seen       *SeenEvents
	metrics    *telemetry.Metrics
	handlers   map[string]Handler
}

type Params struct {
	fx.In

	Log        *zap.Logger
	Cfg        config.Config
	Engine     *reconcile.Engine
	InvoiceSvc invoicedomain.Service
	Seen       *SeenEvents        `optional:"true"`
	Metrics    *telemetry.Metrics `optional:"true"`
}

func NewService(p Params) *Service {
	s := &Service{
		log:        p.Log.Named("webhook.dispatcher"),
		secret:     p.Cfg.ProcessorWebhookSecret,
		engine:     p.Engine,
		invoiceSvc: p.InvoiceSvc,
		seen:       p.Seen,
		metrics:    p.Metrics,
	}

	// The dispatch table is static: a concrete handler means actionable, an
	// explicit nil means acknowledged-but-intentionally-ignored, absence
	// means unhandled (logged for visibility, still acknowledged).
	s.handlers = map[string]Handler{
		"customer.subscription.created": s.handleSubscriptionChanged,
		"customer.subscription.updated": s.handleSubscriptionChanged,
		"customer.subscription.deleted": s.handleSubscriptionDeleted,
		"account.updated":               s.handleAccountUpdated,
		"payment_intent.succeeded":      s.handlePaymentIntentSucceeded,
		"charge.dispute.created":        s.handleDisputeCreated,

		"payment_intent.created":        nil,
		"payment_intent.payment_failed": nil,
		"customer.created":              nil,
		"customer.updated":              nil,
		"charge.succeeded":              nil,
	}

	return s
}

// Dispatch verifies the raw payload and runs the matching handler. It
// returns an error only when verification fails; any post-verification
// outcome is an acknowledgment. Handler errors are logged with the external
// identifier and entity kind and swallowed here — compensating action is an
// operational concern, not an automatic retry.
func (s *Service) Dispatch(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := processor.VerifyAndParse(payload, sigHeader, s.secret)
	if err != nil {
		s.metrics.ObserveWebhookEvent("unknown", "rejected")
		return err
	}

	if s.seen.Seen(ctx, event.ID) {
		s.metrics.ObserveWebhookEvent(event.Type, "replayed")
		return nil
	}

	handler, known := s.handlers[event.Type]
	if !known {
		s.log.Info("unhandled webhook event type",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
		)
		s.metrics.ObserveWebhookEvent(event.Type, "unhandled")
		return nil
	}
	if handler == nil {
		s.metrics.ObserveWebhookEvent(event.Type, "ignored")
		return nil
	}

	if err := s.invoke(ctx, handler, event); err != nil {
		var integrity *reconcile.DataIntegrityError
		if errors.As(err, &integrity) {
			s.log.Error("webhook references unknown internal record",
				zap.String("event_id", event.ID),
				zap.String("event_type", event.Type),
				zap.String("entity_kind", integrity.Kind),
				zap.String("external_id", integrity.ExternalID),
			)
			s.metrics.ObserveWebhookEvent(event.Type, "integrity_error")
			return nil
		}

		s.log.Error("webhook handler failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.Error(err),
		)
		s.metrics.ObserveWebhookEvent(event.Type, "failed")
		return nil
	}

	s.seen.Mark(ctx, event.ID)
	s.metrics.ObserveWebhookEvent(event.Type, "handled")
	return nil
}

// invoke shields the dispatcher from a panicking handler.
func (s *Service) invoke(ctx context.Context, handler Handler, event *processor.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, event)
}

func (s *Service) handleSubscriptionChanged(ctx context.Context, event *processor.Event) error {
	var snap processor.Subscription
	if err := json.Unmarshal(event.Data.Raw, &snap); err != nil {
		return err
	}

	_, _, err := s.engine.ReconcileSubscription(ctx, &snap)
	return err
}

func (s *Service) handleSubscriptionDeleted(ctx context.Context, event *processor.Event) error {
	var snap processor.Subscription
	if err := json.Unmarshal(event.Data.Raw, &snap); err != nil {
		return err
	}

	return s.engine.DeleteSubscription(ctx, snap.ID)
}

func (s *Service) handleAccountUpdated(ctx context.Context, event *processor.Event) error {
	var snap processor.Account
	if err := json.Unmarshal(event.Data.Raw, &snap); err != nil {
		return err
	}

	_, _, err := s.engine.ReconcilePayoutAccount(ctx, &snap)
	return err
}

func (s *Service) handlePaymentIntentSucceeded(ctx context.Context, event *processor.Event) error {
	var intent processor.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return err
	}

	_, err := s.invoiceSvc.SettleByPaymentIntent(ctx, intent.ID)
	if errors.Is(err, invoicedomain.ErrNotFound) {
		return &reconcile.DataIntegrityError{Kind: "invoice", ExternalID: intent.ID}
	}
	return err
}

func (s *Service) handleDisputeCreated(ctx context.Context, event *processor.Event) error {
	var dispute struct {
		ID            string        `json:"id"`
		PaymentIntent processor.Ref `json:"payment_intent"`
	}
	if err := json.Unmarshal(event.Data.Raw, &dispute); err != nil {
		return err
	}

	_, err := s.invoiceSvc.DisputeByPaymentIntent(ctx, dispute.PaymentIntent.ID)
	if errors.Is(err, invoicedomain.ErrNotFound) {
		return &reconcile.DataIntegrityError{Kind: "invoice", ExternalID: dispute.PaymentIntent.ID}
	}
	return err
}
