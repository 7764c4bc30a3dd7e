package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/trueup/internal/clock"
	"github.com/smallbiznis/trueup/internal/config"
	payoutdomain "github.com/smallbiznis/trueup/internal/payoutaccount/domain"
	"github.com/smallbiznis/trueup/internal/payoutaccount/repository"
	"github.com/smallbiznis/trueup/internal/processor"
	"github.com/smallbiznis/trueup/internal/reconcile"
	subscriptionrepository "github.com/smallbiznis/trueup/internal/subscription/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeProcessor struct {
	createCalls  atomic.Int64
	lastMetadata string
	account      processor.Account
}

func (f *fakeProcessor) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/accounts", func(w http.ResponseWriter, r *http.Request) {
		f.createCalls.Add(1)
		f.lastMetadata = r.PostFormValue("metadata[owner_id]")
		json.NewEncoder(w).Encode(f.account)
	})
	mux.HandleFunc("/v1/accounts/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/v1/accounts/")
		acct := f.account
		acct.ID = id
		json.NewEncoder(w).Encode(acct)
	})
	return mux
}

func setupService(t *testing.T) (payoutdomain.Service, *fakeProcessor, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&payoutdomain.PayoutAccount{}))

	fake := &fakeProcessor{account: processor.Account{ID: "acct_1"}}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client := processor.NewClient(config.Config{
		ProcessorAPIKey:  "sk_test",
		ProcessorBaseURL: srv.URL,
	})
	engine := reconcile.NewEngine(reconcile.Params{
		DB:         db,
		Log:        zap.NewNop(),
		Clock:      clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		SubRepo:    subscriptionrepository.Provide(),
		PayoutRepo: repository.Provide(),
	})

	svc := NewService(ServiceParam{
		DB:        db,
		Log:       zap.NewNop(),
		Repo:      repository.Provide(),
		Client:    client,
		Reconcile: engine,
	})
	return svc, fake, db
}

func TestCreatePayoutAccount(t *testing.T) {
	svc, fake, db := setupService(t)
	owner := snowflake.ID(7001)

	account, err := svc.Create(context.Background(), payoutdomain.CreateAccountRequest{
		OwnerID: owner,
		Email:   "seller@example.com",
		Country: "US",
	})
	require.NoError(t, err)
	require.Equal(t, "acct_1", account.ID)
	require.Equal(t, owner, account.OwnerID)
	require.Equal(t, owner.String(), fake.lastMetadata)

	var count int64
	require.NoError(t, db.Model(&payoutdomain.PayoutAccount{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

// A second registration for the same owner fails before the processor is
// asked to create another account.
func TestCreatePayoutAccountDuplicateOwner(t *testing.T) {
	svc, fake, _ := setupService(t)
	owner := snowflake.ID(7001)

	_, err := svc.Create(context.Background(), payoutdomain.CreateAccountRequest{OwnerID: owner})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), payoutdomain.CreateAccountRequest{OwnerID: owner})
	require.ErrorIs(t, err, payoutdomain.ErrAlreadyExists)
	require.EqualValues(t, 1, fake.createCalls.Load())
}

func TestCreatePayoutAccountInvalidOwner(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.Create(context.Background(), payoutdomain.CreateAccountRequest{OwnerID: 0})
	require.ErrorIs(t, err, payoutdomain.ErrInvalidOwner)
}

func TestGetByOwner(t *testing.T) {
	svc, _, _ := setupService(t)
	owner := snowflake.ID(7001)

	_, err := svc.GetByOwner(context.Background(), owner)
	require.ErrorIs(t, err, payoutdomain.ErrNotFound)

	_, err = svc.Create(context.Background(), payoutdomain.CreateAccountRequest{OwnerID: owner})
	require.NoError(t, err)

	account, err := svc.GetByOwner(context.Background(), owner)
	require.NoError(t, err)
	require.Equal(t, "acct_1", account.ID)
}

// Refresh pulls the processor's current capability flags and reconciles them
// into the mirror. Refreshing again without a remote change writes nothing.
func TestRefreshPayoutAccount(t *testing.T) {
	svc, fake, db := setupService(t)
	owner := snowflake.ID(7001)

	_, err := svc.Create(context.Background(), payoutdomain.CreateAccountRequest{OwnerID: owner})
	require.NoError(t, err)

	fake.account.DetailsSubmitted = true
	fake.account.ChargesEnabled = true

	refreshed, changed, err := svc.Refresh(context.Background(), "acct_1")
	require.NoError(t, err)
	require.True(t, changed)
	require.True(t, refreshed.ChargesEnabled)
	require.False(t, refreshed.PayoutsEnabled)

	_, changed, err = svc.Refresh(context.Background(), "acct_1")
	require.NoError(t, err)
	require.False(t, changed)

	var stored payoutdomain.PayoutAccount
	require.NoError(t, db.First(&stored, "id = ?", "acct_1").Error)
	require.True(t, stored.DetailsSubmitted)
}
