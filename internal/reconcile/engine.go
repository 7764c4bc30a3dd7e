// Package reconcile implements the comparison/merge policy between the
// processor's reported state and the internal store. Both the webhook path
// and the direct-API path converge here so there is exactly one codified
// policy regardless of trigger source.
package reconcile

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/trueup/internal/clock"
	"github.com/smallbiznis/trueup/internal/lifecycle"
	payoutdomain "github.com/smallbiznis/trueup/internal/payoutaccount/domain"
	"github.com/smallbiznis/trueup/internal/processor"
	subscriptiondomain "github.com/smallbiznis/trueup/internal/subscription/domain"
	"github.com/smallbiznis/trueup/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Engine struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	subRepo    subscriptiondomain.Repository
	payoutRepo payoutdomain.Repository
	metrics    *telemetry.Metrics
}

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	SubRepo    subscriptiondomain.Repository
	PayoutRepo payoutdomain.Repository
	Metrics    *telemetry.Metrics `optional:"true"`
}

func NewEngine(p Params) *Engine {
	return &Engine{
		db:         p.DB,
		log:        p.Log.Named("reconcile.engine"),
		clock:      p.Clock,
		subRepo:    p.SubRepo,
		payoutRepo: p.PayoutRepo,
		metrics:    p.Metrics,
	}
}

// ReconcileSubscription merges a fresh processor snapshot into the existing
// internal record. A snapshot for an unknown identifier is a data-integrity
// error, not a create. The write is a single primary-key-scoped update
// issued only when a mirrored field differs, so replaying the same snapshot
// is a no-op.
func (e *Engine) ReconcileSubscription(ctx context.Context, snap *processor.Subscription) (subscriptiondomain.Subscription, bool, error) {
	record, err := e.subRepo.FindByID(ctx, e.db, snap.ID)
	if err != nil {
		return subscriptiondomain.Subscription{}, false, err
	}
	if record == nil {
		e.metrics.ObserveReconcile("subscription", "integrity_error")
		return subscriptiondomain.Subscription{}, false, &DataIntegrityError{Kind: "subscription", ExternalID: snap.ID}
	}

	return e.applySubscription(ctx, *record, snap)
}

// UpsertSubscription is the checkout-path variant: a snapshot for an unknown
// identifier creates the record (first successful checkout), a known one is
// reconciled. It never creates a duplicate record for a known owner because
// the primary key is the processor's own identifier.
func (e *Engine) UpsertSubscription(ctx context.Context, ownerID snowflake.ID, snap *processor.Subscription) (subscriptiondomain.Subscription, bool, error) {
	record, err := e.subRepo.FindByID(ctx, e.db, snap.ID)
	if err != nil {
		return subscriptiondomain.Subscription{}, false, err
	}

	if record == nil {
		fields := NormalizeSubscription(snap)
		now := e.clock.Now()
		created := fields.Created
		if created.IsZero() || created.Unix() == 0 {
			created = now
		}
		fresh := subscriptiondomain.Subscription{
			ID:               fields.ID,
			OwnerID:          ownerID,
			PriceID:          fields.PriceID,
			ProductID:        fields.ProductID,
			Status:           fields.Status,
			CurrentPeriodEnd: fields.CurrentPeriodEnd,
			CreatedAt:        created,
			UpdatedAt:        now,
		}
		if err := e.subRepo.Insert(ctx, e.db, &fresh); err != nil {
			return subscriptiondomain.Subscription{}, false, err
		}
		e.metrics.ObserveReconcile("subscription", "created")
		return fresh, true, nil
	}

	return e.applySubscription(ctx, *record, snap)
}

func (e *Engine) applySubscription(ctx context.Context, record subscriptiondomain.Subscription, snap *processor.Subscription) (subscriptiondomain.Subscription, bool, error) {
	fields := NormalizeSubscription(snap)

	updates := map[string]any{}
	if record.Status != fields.Status {
		updates["status"] = fields.Status
	}
	if !record.CurrentPeriodEnd.Equal(fields.CurrentPeriodEnd) {
		updates["current_period_end"] = fields.CurrentPeriodEnd
	}
	if fields.PriceID != "" && record.PriceID != fields.PriceID {
		updates["price_id"] = fields.PriceID
	}
	if fields.ProductID != "" && record.ProductID != fields.ProductID {
		updates["product_id"] = fields.ProductID
	}

	if len(updates) == 0 {
		e.metrics.ObserveReconcile("subscription", "noop")
		return record, false, nil
	}

	updates["updated_at"] = e.clock.Now()
	if err := e.subRepo.UpdateFields(ctx, e.db, record.ID, updates); err != nil {
		return subscriptiondomain.Subscription{}, false, err
	}

	if v, ok := updates["status"].(lifecycle.Status); ok {
		record.Status = v
	}
	record.CurrentPeriodEnd = fields.CurrentPeriodEnd
	if fields.PriceID != "" {
		record.PriceID = fields.PriceID
	}
	if fields.ProductID != "" {
		record.ProductID = fields.ProductID
	}
	record.UpdatedAt = updates["updated_at"].(time.Time)

	e.log.Info("reconciled subscription",
		zap.String("subscription_id", record.ID),
		zap.String("status", string(record.Status)),
	)
	e.metrics.ObserveReconcile("subscription", "updated")
	return record, true, nil
}

// DeleteSubscription removes the internal record for a processor-deleted
// subscription. Deletion events are the one case where the record goes away
// entirely rather than being soft-deleted.
func (e *Engine) DeleteSubscription(ctx context.Context, id string) error {
	record, err := e.subRepo.FindByID(ctx, e.db, id)
	if err != nil {
		return err
	}
	if record == nil {
		e.metrics.ObserveReconcile("subscription", "integrity_error")
		return &DataIntegrityError{Kind: "subscription", ExternalID: id}
	}

	if err := e.subRepo.Delete(ctx, e.db, id); err != nil {
		return err
	}
	e.metrics.ObserveReconcile("subscription", "deleted")
	return nil
}

// ReconcilePayoutAccount merges a fresh processor account snapshot into the
// existing internal record. Same conditional-write contract as
// ReconcileSubscription.
func (e *Engine) ReconcilePayoutAccount(ctx context.Context, snap *processor.Account) (payoutdomain.PayoutAccount, bool, error) {
	record, err := e.payoutRepo.FindByID(ctx, e.db, snap.ID)
	if err != nil {
		return payoutdomain.PayoutAccount{}, false, err
	}
	if record == nil {
		e.metrics.ObserveReconcile("payout_account", "integrity_error")
		return payoutdomain.PayoutAccount{}, false, &DataIntegrityError{Kind: "payout_account", ExternalID: snap.ID}
	}

	fields := NormalizeAccount(snap)

	updates := map[string]any{}
	if record.DetailsSubmitted != fields.DetailsSubmitted {
		updates["details_submitted"] = fields.DetailsSubmitted
	}
	if record.ChargesEnabled != fields.ChargesEnabled {
		updates["charges_enabled"] = fields.ChargesEnabled
	}
	if record.PayoutsEnabled != fields.PayoutsEnabled {
		updates["payouts_enabled"] = fields.PayoutsEnabled
	}

	if len(updates) == 0 {
		e.metrics.ObserveReconcile("payout_account", "noop")
		return *record, false, nil
	}

	updates["updated_at"] = e.clock.Now()
	if err := e.payoutRepo.UpdateFields(ctx, e.db, record.ID, updates); err != nil {
		return payoutdomain.PayoutAccount{}, false, err
	}

	record.DetailsSubmitted = fields.DetailsSubmitted
	record.ChargesEnabled = fields.ChargesEnabled
	record.PayoutsEnabled = fields.PayoutsEnabled
	record.UpdatedAt = updates["updated_at"].(time.Time)

	e.log.Info("reconciled payout account",
		zap.String("account_id", record.ID),
		zap.Bool("charges_enabled", record.ChargesEnabled),
		zap.Bool("payouts_enabled", record.PayoutsEnabled),
	)
	e.metrics.ObserveReconcile("payout_account", "updated")
	return *record, true, nil
}

// Module provides the reconciliation engine.
var Module = fx.Module("reconcile",
	fx.Provide(NewEngine),
)
