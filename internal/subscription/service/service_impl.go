package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	subscriptiondomain "github.com/smallbiznis/trueup/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo subscriptiondomain.Repository
}

type ServiceParam struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo subscriptiondomain.Repository
}

func NewService(p ServiceParam) subscriptiondomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("subscription.service"),
		repo: p.Repo,
	}
}

// GetByID implements domain.Service.
func (s *Service) GetByID(ctx context.Context, id string) (subscriptiondomain.Subscription, error) {
	sub, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return subscriptiondomain.Subscription{}, err
	}
	if sub == nil {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrNotFound
	}
	return *sub, nil
}

// ListByOwner implements domain.Service.
func (s *Service) ListByOwner(ctx context.Context, ownerID snowflake.ID) ([]subscriptiondomain.Subscription, error) {
	if ownerID == 0 {
		return nil, subscriptiondomain.ErrInvalidOwner
	}
	return s.repo.FindByOwnerID(ctx, s.db, ownerID)
}

// GetAuthoritative implements domain.Service.
func (s *Service) GetAuthoritative(ctx context.Context, ownerID snowflake.ID) (subscriptiondomain.Subscription, error) {
	if ownerID == 0 {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrInvalidOwner
	}

	subs, err := s.repo.FindByOwnerID(ctx, s.db, ownerID)
	if err != nil {
		return subscriptiondomain.Subscription{}, err
	}

	winner := subscriptiondomain.MostAuthoritative(subs)
	if winner == nil {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrNotFound
	}
	return *winner, nil
}
