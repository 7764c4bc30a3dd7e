package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/trueup/internal/authz"
	"github.com/smallbiznis/trueup/internal/clock"
	"github.com/smallbiznis/trueup/internal/lifecycle"
	workorderdomain "github.com/smallbiznis/trueup/internal/workorder/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  workorderdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  workorderdomain.Repository
}

func NewService(p ServiceParam) workorderdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("workorder.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Create implements domain.Service.
func (s *Service) Create(ctx context.Context, req workorderdomain.CreateWorkOrderRequest) (workorderdomain.WorkOrder, error) {
	if req.OwnerID == 0 {
		return workorderdomain.WorkOrder{}, workorderdomain.ErrInvalidOwner
	}

	now := s.clock.Now()
	order := workorderdomain.WorkOrder{
		ID:             s.genID.Generate(),
		OwnerID:        req.OwnerID,
		CounterpartyID: req.CounterpartyID,
		Title:          req.Title,
		Status:         lifecycle.InitialStatus(lifecycle.KindWorkOrder),
		Metadata:       datatypes.JSONMap(req.Metadata),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Insert(ctx, s.db, &order); err != nil {
		return workorderdomain.WorkOrder{}, err
	}
	return order, nil
}

// GetByID implements domain.Service.
func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (workorderdomain.WorkOrder, error) {
	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return workorderdomain.WorkOrder{}, err
	}
	if order == nil {
		return workorderdomain.WorkOrder{}, workorderdomain.ErrNotFound
	}
	return *order, nil
}

// ListByParticipant implements domain.Service.
func (s *Service) ListByParticipant(ctx context.Context, principalID snowflake.ID) ([]workorderdomain.WorkOrder, error) {
	return s.repo.ListByParticipant(ctx, s.db, principalID)
}

// Transition implements domain.Service. The edge is validated first, then
// the acting principal against the party the edge allows; only after both
// pass does a store write happen.
func (s *Service) Transition(ctx context.Context, req workorderdomain.TransitionRequest) (workorderdomain.WorkOrder, error) {
	order, err := s.repo.FindByID(ctx, s.db, req.ID)
	if err != nil {
		return workorderdomain.WorkOrder{}, err
	}
	if order == nil {
		return workorderdomain.WorkOrder{}, workorderdomain.ErrNotFound
	}

	next, err := lifecycle.NextStatus(lifecycle.KindWorkOrder, order.Status, req.RequestedStatus)
	if err != nil {
		return workorderdomain.WorkOrder{}, err
	}

	actor, _ := lifecycle.TransitionActor(lifecycle.KindWorkOrder, order.Status, req.RequestedStatus)
	if err := authz.AuthorizeParty(order.Status, actor, req.ActingPrincipal, order.OwnerID, order.CounterpartyID, nil); err != nil {
		return workorderdomain.WorkOrder{}, err
	}

	updates := map[string]any{
		"status":     next,
		"updated_at": s.clock.Now(),
	}
	if err := s.repo.UpdateFields(ctx, s.db, order.ID, updates); err != nil {
		return workorderdomain.WorkOrder{}, err
	}

	order.Status = next
	order.UpdatedAt = updates["updated_at"].(time.Time)
	s.log.Info("work order transitioned",
		zap.String("work_order_id", order.ID.String()),
		zap.String("status", string(next)),
	)
	return *order, nil
}

// Delete implements domain.Service.
func (s *Service) Delete(ctx context.Context, id, actingPrincipal snowflake.ID) error {
	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if order == nil {
		return workorderdomain.ErrNotFound
	}

	if err := authz.Authorize(order.Status, authz.Request{
		ActingPrincipalID:   actingPrincipal,
		RequiredPrincipalID: order.OwnerID,
	}); err != nil {
		return err
	}

	if !lifecycle.DeletableStatus(lifecycle.KindWorkOrder, order.Status) {
		return workorderdomain.ErrNotDeletable
	}

	return s.repo.Delete(ctx, s.db, id)
}
