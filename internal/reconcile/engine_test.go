package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/trueup/internal/clock"
	"github.com/smallbiznis/trueup/internal/lifecycle"
	payoutdomain "github.com/smallbiznis/trueup/internal/payoutaccount/domain"
	payoutrepository "github.com/smallbiznis/trueup/internal/payoutaccount/repository"
	"github.com/smallbiznis/trueup/internal/processor"
	subscriptiondomain "github.com/smallbiznis/trueup/internal/subscription/domain"
	subscriptionrepository "github.com/smallbiznis/trueup/internal/subscription/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupEngine(t *testing.T) (*Engine, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&subscriptiondomain.Subscription{},
		&payoutdomain.PayoutAccount{},
	))

	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	engine := NewEngine(Params{
		DB:         db,
		Log:        zap.NewNop(),
		Clock:      fake,
		SubRepo:    subscriptionrepository.Provide(),
		PayoutRepo: payoutrepository.Provide(),
	})
	return engine, db, fake
}

func snapshot(id, status string, periodEnd time.Time) *processor.Subscription {
	snap := &processor.Subscription{
		ID:               id,
		Status:           status,
		CurrentPeriodEnd: periodEnd.Unix(),
		Created:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Unix(),
	}
	snap.Items.Data = []processor.SubscriptionItem{
		{ID: "si_1", Price: processor.Price{ID: "price_basic", Product: processor.Ref{ID: "prod_basic"}}},
	}
	return snap
}

func seedSubscription(t *testing.T, engine *Engine, owner snowflake.ID, snap *processor.Subscription) subscriptiondomain.Subscription {
	t.Helper()
	record, created, err := engine.UpsertSubscription(context.Background(), owner, snap)
	require.NoError(t, err)
	require.True(t, created)
	return record
}

// A trialing record reconciled against an active snapshot with a later period
// end picks up both fields in one conditional write.
func TestReconcileSubscriptionAppliesFresherSnapshot(t *testing.T) {
	engine, _, fake := setupEngine(t)
	ctx := context.Background()

	t1 := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	seedSubscription(t, engine, 7, snapshot("sub_1", "trialing", t1))

	fake.Advance(time.Hour)
	record, updated, err := engine.ReconcileSubscription(ctx, snapshot("sub_1", "active", t2))
	require.NoError(t, err)
	require.True(t, updated)
	require.Equal(t, lifecycle.SubscriptionActive, record.Status)
	require.True(t, record.CurrentPeriodEnd.Equal(t2))
}

// Replaying the identical snapshot must not issue a second write.
func TestReconcileSubscriptionIdempotent(t *testing.T) {
	engine, db, fake := setupEngine(t)
	ctx := context.Background()

	periodEnd := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	seedSubscription(t, engine, 7, snapshot("sub_1", "active", periodEnd))

	first, updated, err := engine.ReconcileSubscription(ctx, snapshot("sub_1", "active", periodEnd))
	require.NoError(t, err)
	require.False(t, updated)

	fake.Advance(time.Hour)
	second, updated, err := engine.ReconcileSubscription(ctx, snapshot("sub_1", "active", periodEnd))
	require.NoError(t, err)
	require.False(t, updated)
	require.Equal(t, first.UpdatedAt, second.UpdatedAt)

	var stored subscriptiondomain.Subscription
	require.NoError(t, db.First(&stored, "id = ?", "sub_1").Error)
	require.Equal(t, first.UpdatedAt.UTC(), stored.UpdatedAt.UTC())
}

// A snapshot for an identifier the store has never seen is a data-integrity
// failure on the reconcile path; only checkout may create records.
func TestReconcileSubscriptionUnknownIDIsIntegrityError(t *testing.T) {
	engine, db, _ := setupEngine(t)

	_, _, err := engine.ReconcileSubscription(context.Background(), snapshot("sub_ghost", "active", time.Now()))
	var integrity *DataIntegrityError
	require.ErrorAs(t, err, &integrity)
	require.Equal(t, "subscription", integrity.Kind)
	require.Equal(t, "sub_ghost", integrity.ExternalID)

	var count int64
	require.NoError(t, db.Model(&subscriptiondomain.Subscription{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestUpsertSubscriptionCreatesThenReconciles(t *testing.T) {
	engine, _, _ := setupEngine(t)
	ctx := context.Background()

	periodEnd := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	record, created, err := engine.UpsertSubscription(ctx, 7, snapshot("sub_1", "incomplete", periodEnd))
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, lifecycle.SubscriptionIncomplete, record.Status)
	require.Equal(t, snowflake.ID(7), record.OwnerID)
	require.Equal(t, "price_basic", record.PriceID)
	require.Equal(t, "prod_basic", record.ProductID)

	record, created, err = engine.UpsertSubscription(ctx, 7, snapshot("sub_1", "active", periodEnd))
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, lifecycle.SubscriptionActive, record.Status)
}

func TestDeleteSubscription(t *testing.T) {
	engine, db, _ := setupEngine(t)
	ctx := context.Background()

	seedSubscription(t, engine, 7, snapshot("sub_1", "active", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, engine.DeleteSubscription(ctx, "sub_1"))

	var count int64
	require.NoError(t, db.Model(&subscriptiondomain.Subscription{}).Count(&count).Error)
	require.Zero(t, count)

	var integrity *DataIntegrityError
	require.ErrorAs(t, engine.DeleteSubscription(ctx, "sub_1"), &integrity)
}

func TestReconcilePayoutAccount(t *testing.T) {
	engine, db, fake := setupEngine(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&payoutdomain.PayoutAccount{
		ID:        "acct_1",
		OwnerID:   9,
		CreatedAt: fake.Now(),
		UpdatedAt: fake.Now(),
	}).Error)

	snap := &processor.Account{
		ID:               "acct_1",
		DetailsSubmitted: true,
		ChargesEnabled:   true,
		PayoutsEnabled:   false,
	}

	fake.Advance(time.Minute)
	record, updated, err := engine.ReconcilePayoutAccount(ctx, snap)
	require.NoError(t, err)
	require.True(t, updated)
	require.True(t, record.DetailsSubmitted)
	require.True(t, record.ChargesEnabled)
	require.False(t, record.PayoutsEnabled)

	// Same snapshot again: no write.
	_, updated, err = engine.ReconcilePayoutAccount(ctx, snap)
	require.NoError(t, err)
	require.False(t, updated)

	var integrity *DataIntegrityError
	_, _, err = engine.ReconcilePayoutAccount(ctx, &processor.Account{ID: "acct_ghost"})
	require.ErrorAs(t, err, &integrity)
}
