package service

import (
	"context"
	"strconv"

	"github.com/bwmarrin/snowflake"
	payoutdomain "github.com/smallbiznis/trueup/internal/payoutaccount/domain"
	"github.com/smallbiznis/trueup/internal/processor"
	"github.com/smallbiznis/trueup/internal/reconcile"
	"github.com/smallbiznis/trueup/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	repo      payoutdomain.Repository
	client    *processor.Client
	reconcile *reconcile.Engine
}

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Repo      payoutdomain.Repository
	Client    *processor.Client
	Reconcile *reconcile.Engine
}

func NewService(p ServiceParam) payoutdomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("payoutaccount.service"),
		repo:      p.Repo,
		client:    p.Client,
		reconcile: p.Reconcile,
	}
}

// Create implements domain.Service. One processor account-creation call is
// paired with one internal insert; the unique owner index turns a double
// registration race into ErrAlreadyExists instead of a second account.
func (s *Service) Create(ctx context.Context, req payoutdomain.CreateAccountRequest) (payoutdomain.PayoutAccount, error) {
	if req.OwnerID == 0 {
		return payoutdomain.PayoutAccount{}, payoutdomain.ErrInvalidOwner
	}

	existing, err := s.repo.FindByOwnerID(ctx, s.db, req.OwnerID)
	if err != nil {
		return payoutdomain.PayoutAccount{}, err
	}
	if existing != nil {
		return payoutdomain.PayoutAccount{}, payoutdomain.ErrAlreadyExists
	}

	snap, err := s.client.CreateAccount(ctx, processor.CreateAccountParams{
		Email:   req.Email,
		Country: req.Country,
		Metadata: map[string]string{
			"owner_id": strconv.FormatInt(int64(req.OwnerID), 10),
		},
	})
	if err != nil {
		return payoutdomain.PayoutAccount{}, err
	}

	fields := reconcile.NormalizeAccount(snap)
	account := payoutdomain.PayoutAccount{
		ID:               fields.ID,
		OwnerID:          req.OwnerID,
		DetailsSubmitted: fields.DetailsSubmitted,
		ChargesEnabled:   fields.ChargesEnabled,
		PayoutsEnabled:   fields.PayoutsEnabled,
	}
	if err := s.repo.Insert(ctx, s.db, &account); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return payoutdomain.PayoutAccount{}, payoutdomain.ErrAlreadyExists
		}
		return payoutdomain.PayoutAccount{}, err
	}

	s.log.Info("created payout account",
		zap.String("account_id", account.ID),
		zap.String("owner_id", req.OwnerID.String()),
	)
	return account, nil
}

// GetByOwner implements domain.Service.
func (s *Service) GetByOwner(ctx context.Context, ownerID snowflake.ID) (payoutdomain.PayoutAccount, error) {
	if ownerID == 0 {
		return payoutdomain.PayoutAccount{}, payoutdomain.ErrInvalidOwner
	}

	account, err := s.repo.FindByOwnerID(ctx, s.db, ownerID)
	if err != nil {
		return payoutdomain.PayoutAccount{}, err
	}
	if account == nil {
		return payoutdomain.PayoutAccount{}, payoutdomain.ErrNotFound
	}
	return *account, nil
}

// Refresh implements domain.Service: fetch the processor's current account
// state and reconcile it in.
func (s *Service) Refresh(ctx context.Context, id string) (payoutdomain.PayoutAccount, bool, error) {
	snap, err := s.client.RetrieveAccount(ctx, id)
	if err != nil {
		return payoutdomain.PayoutAccount{}, false, err
	}

	return s.reconcile.ReconcilePayoutAccount(ctx, snap)
}
