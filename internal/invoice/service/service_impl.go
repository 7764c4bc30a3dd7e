package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/trueup/internal/authz"
	"github.com/smallbiznis/trueup/internal/clock"
	invoicedomain "github.com/smallbiznis/trueup/internal/invoice/domain"
	"github.com/smallbiznis/trueup/internal/lifecycle"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// amountMutationForbidden lists the statuses in which invoice amounts are
// frozen, with the reason surfaced to the caller.
var amountMutationForbidden = map[lifecycle.Status]string{
	lifecycle.InvoiceClosed:   "invoice is closed and can no longer be changed",
	lifecycle.InvoiceDisputed: "invoice is under dispute and can no longer be changed",
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  invoicedomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  invoicedomain.Repository
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Create implements domain.Service.
func (s *Service) Create(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (invoicedomain.Invoice, error) {
	if req.OwnerID == 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidOwner
	}
	if req.AmountCents <= 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidAmount
	}

	now := s.clock.Now()
	invoice := invoicedomain.Invoice{
		ID:              s.genID.Generate(),
		OwnerID:         req.OwnerID,
		CounterpartyID:  req.CounterpartyID,
		AmountCents:     req.AmountCents,
		Currency:        strings.ToLower(req.Currency),
		Status:          lifecycle.InitialStatus(lifecycle.KindInvoice),
		PaymentIntentID: req.PaymentIntentID,
		Metadata:        datatypes.JSONMap(req.Metadata),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, s.db, &invoice); err != nil {
		return invoicedomain.Invoice{}, err
	}
	return invoice, nil
}

// GetByID implements domain.Service.
func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (invoicedomain.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if invoice == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrNotFound
	}
	return *invoice, nil
}

// ListByParticipant implements domain.Service.
func (s *Service) ListByParticipant(ctx context.Context, principalID snowflake.ID) ([]invoicedomain.Invoice, error) {
	return s.repo.ListByParticipant(ctx, s.db, principalID)
}

// UpdateAmount implements domain.Service.
func (s *Service) UpdateAmount(ctx context.Context, req invoicedomain.UpdateAmountRequest) (invoicedomain.Invoice, error) {
	if req.AmountCents <= 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidAmount
	}

	invoice, err := s.repo.FindByID(ctx, s.db, req.ID)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if invoice == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrNotFound
	}

	if err := authz.Authorize(invoice.Status, authz.Request{
		ActingPrincipalID:      req.ActingPrincipal,
		RequiredPrincipalID:    invoice.OwnerID,
		ForbiddenStatusReasons: amountMutationForbidden,
	}); err != nil {
		return invoicedomain.Invoice{}, err
	}

	updates := map[string]any{
		"amount_cents": req.AmountCents,
		"updated_at":   s.clock.Now(),
	}
	if err := s.repo.UpdateFields(ctx, s.db, invoice.ID, updates); err != nil {
		return invoicedomain.Invoice{}, err
	}

	invoice.AmountCents = req.AmountCents
	invoice.UpdatedAt = updates["updated_at"].(time.Time)
	return *invoice, nil
}

// Transition implements domain.Service.
func (s *Service) Transition(ctx context.Context, req invoicedomain.TransitionRequest) (invoicedomain.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, s.db, req.ID)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if invoice == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrNotFound
	}

	next, err := lifecycle.NextStatus(lifecycle.KindInvoice, invoice.Status, req.RequestedStatus)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	actor, _ := lifecycle.TransitionActor(lifecycle.KindInvoice, invoice.Status, req.RequestedStatus)
	if err := authz.AuthorizeParty(invoice.Status, actor, req.ActingPrincipal, invoice.OwnerID, invoice.CounterpartyID, nil); err != nil {
		return invoicedomain.Invoice{}, err
	}

	return s.writeStatus(ctx, *invoice, next)
}

// SettleByPaymentIntent implements domain.Service.
func (s *Service) SettleByPaymentIntent(ctx context.Context, paymentIntentID string) (invoicedomain.Invoice, error) {
	return s.transitionByPaymentIntent(ctx, paymentIntentID, lifecycle.InvoiceClosed)
}

// DisputeByPaymentIntent implements domain.Service.
func (s *Service) DisputeByPaymentIntent(ctx context.Context, paymentIntentID string) (invoicedomain.Invoice, error) {
	return s.transitionByPaymentIntent(ctx, paymentIntentID, lifecycle.InvoiceDisputed)
}

func (s *Service) transitionByPaymentIntent(ctx context.Context, paymentIntentID string, target lifecycle.Status) (invoicedomain.Invoice, error) {
	invoice, err := s.repo.FindByPaymentIntentID(ctx, s.db, paymentIntentID)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if invoice == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrNotFound
	}

	// Replayed events land here with the transition already applied; that
	// is a no-op, not an error.
	if invoice.Status == target {
		return *invoice, nil
	}

	next, err := lifecycle.NextStatus(lifecycle.KindInvoice, invoice.Status, target)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	return s.writeStatus(ctx, *invoice, next)
}

func (s *Service) writeStatus(ctx context.Context, invoice invoicedomain.Invoice, next lifecycle.Status) (invoicedomain.Invoice, error) {
	updates := map[string]any{
		"status":     next,
		"updated_at": s.clock.Now(),
	}
	if err := s.repo.UpdateFields(ctx, s.db, invoice.ID, updates); err != nil {
		return invoicedomain.Invoice{}, err
	}

	invoice.Status = next
	invoice.UpdatedAt = updates["updated_at"].(time.Time)
	s.log.Info("invoice transitioned",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("status", string(next)),
	)
	return invoice, nil
}
