// Package refresh runs the scheduled anti-entropy sweep: every interval it
// re-fetches each tracked subscription and payout account from the processor
// and reconciles the response into the store. The sweep catches drift from
// webhooks that were never delivered.
package refresh

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/trueup/internal/clock"
	payoutdomain "github.com/smallbiznis/trueup/internal/payoutaccount/domain"
	"github.com/smallbiznis/trueup/internal/processor"
	"github.com/smallbiznis/trueup/internal/reconcile"
	subscriptiondomain "github.com/smallbiznis/trueup/internal/subscription/domain"
	"github.com/smallbiznis/trueup/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Refresher struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	client     *processor.Client
	engine     *reconcile.Engine
	subRepo    subscriptiondomain.Repository
	payoutRepo payoutdomain.Repository
	metrics    *telemetry.Metrics
	interval   time.Duration
}

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	Client     *processor.Client
	Engine     *reconcile.Engine
	SubRepo    subscriptiondomain.Repository
	PayoutRepo payoutdomain.Repository
	Metrics    *telemetry.Metrics `optional:"true"`
}

func New(p Params, interval time.Duration) *Refresher {
	return &Refresher{
		db:         p.DB,
		log:        p.Log.Named("refresh"),
		clock:      p.Clock,
		client:     p.Client,
		engine:     p.Engine,
		subRepo:    p.SubRepo,
		payoutRepo: p.PayoutRepo,
		metrics:    p.Metrics,
		interval:   interval,
	}
}

func (r *Refresher) RunForever(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if err := r.RunOnce(ctx); err != nil {
			r.log.Warn("refresh cycle failed", zap.Error(err))
		}
	}
}

// RunOnce sweeps every tracked record. A failure on one record is logged and
// counted but never stops the sweep; only listing failures abort the cycle.
func (r *Refresher) RunOnce(ctx context.Context) error {
	start := r.clock.Now()

	subIDs, err := r.subRepo.ListIDs(ctx, r.db)
	if err != nil {
		r.metrics.ObserveRefreshCycle("list_error")
		return err
	}
	accountIDs, err := r.payoutRepo.ListIDs(ctx, r.db)
	if err != nil {
		r.metrics.ObserveRefreshCycle("list_error")
		return err
	}

	failed := 0
	for _, id := range subIDs {
		if err := r.refreshSubscription(ctx, id); err != nil {
			failed++
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	for _, id := range accountIDs {
		if err := r.refreshPayoutAccount(ctx, id); err != nil {
			failed++
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	r.log.Info("refresh cycle complete",
		zap.Int("subscriptions", len(subIDs)),
		zap.Int("payout_accounts", len(accountIDs)),
		zap.Int("failed", failed),
		zap.Duration("took", r.clock.Now().Sub(start)),
	)
	if failed > 0 {
		r.metrics.ObserveRefreshCycle("partial")
	} else {
		r.metrics.ObserveRefreshCycle("ok")
	}
	return nil
}

func (r *Refresher) refreshSubscription(ctx context.Context, id string) error {
	snap, err := r.client.RetrieveSubscription(ctx, id)
	if err != nil {
		r.log.Warn("subscription refresh failed",
			zap.String("subscription_id", id),
			zap.Error(err),
		)
		return err
	}

	if _, _, err := r.engine.ReconcileSubscription(ctx, snap); err != nil {
		var integrity *reconcile.DataIntegrityError
		if errors.As(err, &integrity) {
			// The record vanished between listing and reconciling;
			// the next cycle no longer sees it.
			r.log.Warn("subscription disappeared during refresh",
				zap.String("subscription_id", id),
			)
			return nil
		}
		r.log.Warn("subscription reconcile failed",
			zap.String("subscription_id", id),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (r *Refresher) refreshPayoutAccount(ctx context.Context, id string) error {
	snap, err := r.client.RetrieveAccount(ctx, id)
	if err != nil {
		r.log.Warn("payout account refresh failed",
			zap.String("account_id", id),
			zap.Error(err),
		)
		return err
	}

	if _, _, err := r.engine.ReconcilePayoutAccount(ctx, snap); err != nil {
		var integrity *reconcile.DataIntegrityError
		if errors.As(err, &integrity) {
			r.log.Warn("payout account disappeared during refresh",
				zap.String("account_id", id),
			)
			return nil
		}
		r.log.Warn("payout account reconcile failed",
			zap.String("account_id", id),
			zap.Error(err),
		)
		return err
	}
	return nil
}
