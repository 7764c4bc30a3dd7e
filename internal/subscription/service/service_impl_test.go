package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/trueup/internal/lifecycle"
	subscriptiondomain "github.com/smallbiznis/trueup/internal/subscription/domain"
	"github.com/smallbiznis/trueup/internal/subscription/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (subscriptiondomain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&subscriptiondomain.Subscription{}))

	svc := NewService(ServiceParam{
		DB:   db,
		Log:  zap.NewNop(),
		Repo: repository.Provide(),
	})
	return svc, db
}

func seed(t *testing.T, db *gorm.DB, id string, owner snowflake.ID, status lifecycle.Status, created time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&subscriptiondomain.Subscription{
		ID:               id,
		OwnerID:          owner,
		PriceID:          "price_basic",
		ProductID:        "prod_basic",
		Status:           status,
		CurrentPeriodEnd: created.AddDate(0, 1, 0),
		CreatedAt:        created,
		UpdatedAt:        created,
	}).Error)
}

func TestGetByID(t *testing.T) {
	svc, db := setupService(t)
	seed(t, db, "sub_1", 7, lifecycle.SubscriptionActive, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	sub, err := svc.GetByID(context.Background(), "sub_1")
	require.NoError(t, err)
	require.Equal(t, snowflake.ID(7), sub.OwnerID)

	_, err = svc.GetByID(context.Background(), "sub_missing")
	require.ErrorIs(t, err, subscriptiondomain.ErrNotFound)
}

func TestListByOwner(t *testing.T) {
	svc, db := setupService(t)
	seed(t, db, "sub_1", 7, lifecycle.SubscriptionActive, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	seed(t, db, "sub_2", 7, lifecycle.SubscriptionCanceled, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	seed(t, db, "sub_3", 9, lifecycle.SubscriptionActive, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	subs, err := svc.ListByOwner(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, subs, 2)

	_, err = svc.ListByOwner(context.Background(), 0)
	require.ErrorIs(t, err, subscriptiondomain.ErrInvalidOwner)
}

// An owner with several mirrored subscriptions resolves to exactly one
// authoritative record: active-equivalent beats everything, and among
// active-equivalent rows the earliest-created wins.
func TestGetAuthoritative(t *testing.T) {
	svc, db := setupService(t)
	seed(t, db, "sub_old_active", 7, lifecycle.SubscriptionActive, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	seed(t, db, "sub_new_active", 7, lifecycle.SubscriptionTrialing, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	seed(t, db, "sub_canceled", 7, lifecycle.SubscriptionCanceled, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	winner, err := svc.GetAuthoritative(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "sub_old_active", winner.ID)
}

func TestGetAuthoritativeNoSubscriptions(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.GetAuthoritative(context.Background(), 7)
	require.ErrorIs(t, err, subscriptiondomain.ErrNotFound)

	_, err = svc.GetAuthoritative(context.Background(), 0)
	require.ErrorIs(t, err, subscriptiondomain.ErrInvalidOwner)
}
