package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/trueup/internal/clock"
	"github.com/smallbiznis/trueup/internal/config"
	invoicedomain "github.com/smallbiznis/trueup/internal/invoice/domain"
	invoicerepository "github.com/smallbiznis/trueup/internal/invoice/repository"
	invoiceservice "github.com/smallbiznis/trueup/internal/invoice/service"
	"github.com/smallbiznis/trueup/internal/lifecycle"
	payoutdomain "github.com/smallbiznis/trueup/internal/payoutaccount/domain"
	payoutrepository "github.com/smallbiznis/trueup/internal/payoutaccount/repository"
	"github.com/smallbiznis/trueup/internal/processor"
	"github.com/smallbiznis/trueup/internal/reconcile"
	subscriptiondomain "github.com/smallbiznis/trueup/internal/subscription/domain"
	subscriptionrepository "github.com/smallbiznis/trueup/internal/subscription/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "whsec_test"

type fixture struct {
	svc     *Service
	db      *gorm.DB
	engine  *reconcile.Engine
	invoice invoicedomain.Service
	node    *snowflake.Node
}

func setupDispatcher(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&subscriptiondomain.Subscription{},
		&payoutdomain.PayoutAccount{},
		&invoicedomain.Invoice{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	engine := reconcile.NewEngine(reconcile.Params{
		DB:         db,
		Log:        zap.NewNop(),
		Clock:      fake,
		SubRepo:    subscriptionrepository.Provide(),
		PayoutRepo: payoutrepository.Provide(),
	})
	invoiceSvc := invoiceservice.NewService(invoiceservice.ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  invoicerepository.Provide(),
	})

	svc := NewService(Params{
		Log:        zap.NewNop(),
		Cfg:        config.Config{ProcessorWebhookSecret: testSecret},
		Engine:     engine,
		InvoiceSvc: invoiceSvc,
	})

	return &fixture{svc: svc, db: db, engine: engine, invoice: invoiceSvc, node: node}
}

func signedEvent(t *testing.T, id, eventType string, object any) ([]byte, string) {
	t.Helper()

	raw, err := json.Marshal(object)
	require.NoError(t, err)

	payload := []byte(fmt.Sprintf(
		`{"id":%q,"type":%q,"created":1767225600,"data":{"object":%s}}`,
		id, eventType, raw,
	))
	sig := processor.SignPayload(payload, testSecret, time.Now().Unix())
	return payload, sig
}

func TestDispatchRejectsBadSignature(t *testing.T) {
	f := setupDispatcher(t)

	payload, _ := signedEvent(t, "evt_1", "customer.updated", map[string]any{"id": "cus_1"})
	wrongSig := processor.SignPayload(payload, "whsec_other", time.Now().Unix())

	err := f.svc.Dispatch(context.Background(), payload, wrongSig)
	var verification *processor.VerificationError
	require.ErrorAs(t, err, &verification)
}

// Everything past verification is an acknowledgment: nil-entry types, unknown
// types, and failing handlers all return nil.
func TestDispatchAcknowledgmentInvariant(t *testing.T) {
	f := setupDispatcher(t)
	ctx := context.Background()

	// Explicit nil entry.
	payload, sig := signedEvent(t, "evt_nil", "payment_intent.created", map[string]any{"id": "pi_1"})
	require.NoError(t, f.svc.Dispatch(ctx, payload, sig))

	// Absent entry.
	payload, sig = signedEvent(t, "evt_unknown", "invoice.finalized", map[string]any{"id": "in_1"})
	require.NoError(t, f.svc.Dispatch(ctx, payload, sig))

	// Concrete handler hitting a data-integrity failure: the referenced
	// subscription does not exist internally. Acked, logged, nothing created.
	payload, sig = signedEvent(t, "evt_ghost", "customer.subscription.updated", map[string]any{
		"id":                 "sub_ghost",
		"status":             "active",
		"current_period_end": 1775000000,
	})
	require.NoError(t, f.svc.Dispatch(ctx, payload, sig))

	var count int64
	require.NoError(t, f.db.Model(&subscriptiondomain.Subscription{}).Count(&count).Error)
	require.Zero(t, count)

	// Malformed object for a concrete handler: decode fails, still acked.
	payload, sig = signedEvent(t, "evt_bad", "account.updated", "not-an-object")
	require.NoError(t, f.svc.Dispatch(ctx, payload, sig))
}

func TestDispatchSubscriptionLifecycleEvents(t *testing.T) {
	f := setupDispatcher(t)
	ctx := context.Background()

	seed := &processor.Subscription{
		ID:               "sub_1",
		Status:           "trialing",
		CurrentPeriodEnd: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC).Unix(),
		Created:          time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC).Unix(),
	}
	_, created, err := f.engine.UpsertSubscription(ctx, 7, seed)
	require.NoError(t, err)
	require.True(t, created)

	payload, sig := signedEvent(t, "evt_upd", "customer.subscription.updated", map[string]any{
		"id":                 "sub_1",
		"status":             "active",
		"current_period_end": time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC).Unix(),
	})
	require.NoError(t, f.svc.Dispatch(ctx, payload, sig))

	var stored subscriptiondomain.Subscription
	require.NoError(t, f.db.First(&stored, "id = ?", "sub_1").Error)
	require.Equal(t, lifecycle.SubscriptionActive, stored.Status)

	payload, sig = signedEvent(t, "evt_del", "customer.subscription.deleted", map[string]any{
		"id":     "sub_1",
		"status": "canceled",
	})
	require.NoError(t, f.svc.Dispatch(ctx, payload, sig))

	var count int64
	require.NoError(t, f.db.Model(&subscriptiondomain.Subscription{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestDispatchPaymentIntentSucceededSettlesInvoice(t *testing.T) {
	f := setupDispatcher(t)
	ctx := context.Background()

	invoice, err := f.invoice.Create(ctx, invoicedomain.CreateInvoiceRequest{
		OwnerID:         f.node.Generate(),
		CounterpartyID:  f.node.Generate(),
		AmountCents:     5000,
		Currency:        "usd",
		PaymentIntentID: "pi_7",
	})
	require.NoError(t, err)

	payload, sig := signedEvent(t, "evt_pi", "payment_intent.succeeded", map[string]any{
		"id":     "pi_7",
		"status": "succeeded",
	})
	require.NoError(t, f.svc.Dispatch(ctx, payload, sig))

	var stored invoicedomain.Invoice
	require.NoError(t, f.db.First(&stored, "id = ?", invoice.ID).Error)
	require.Equal(t, lifecycle.InvoiceClosed, stored.Status)

	// Redelivery is a no-op, still acknowledged.
	payload, sig = signedEvent(t, "evt_pi_replay", "payment_intent.succeeded", map[string]any{
		"id":     "pi_7",
		"status": "succeeded",
	})
	require.NoError(t, f.svc.Dispatch(ctx, payload, sig))
}

func TestDispatchDisputeCreatedMarksInvoiceDisputed(t *testing.T) {
	f := setupDispatcher(t)
	ctx := context.Background()

	invoice, err := f.invoice.Create(ctx, invoicedomain.CreateInvoiceRequest{
		OwnerID:         f.node.Generate(),
		CounterpartyID:  f.node.Generate(),
		AmountCents:     5000,
		Currency:        "usd",
		PaymentIntentID: "pi_8",
	})
	require.NoError(t, err)

	payload, sig := signedEvent(t, "evt_dp", "charge.dispute.created", map[string]any{
		"id":             "dp_1",
		"payment_intent": "pi_8",
	})
	require.NoError(t, f.svc.Dispatch(ctx, payload, sig))

	var stored invoicedomain.Invoice
	require.NoError(t, f.db.First(&stored, "id = ?", invoice.ID).Error)
	require.Equal(t, lifecycle.InvoiceDisputed, stored.Status)

	// A dispute for an unknown intent is an integrity failure: acked.
	payload, sig = signedEvent(t, "evt_dp_ghost", "charge.dispute.created", map[string]any{
		"id":             "dp_2",
		"payment_intent": "pi_ghost",
	})
	require.NoError(t, f.svc.Dispatch(ctx, payload, sig))
}
