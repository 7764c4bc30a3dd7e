package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/trueup/internal/invoice/domain"
	"github.com/smallbiznis/trueup/internal/lifecycle"
)

type createInvoiceRequest struct {
	CounterpartyID  string         `json:"counterparty_id" binding:"required"`
	AmountCents     int64          `json:"amount_cents" binding:"required"`
	Currency        string         `json:"currency" binding:"required"`
	PaymentIntentID string         `json:"payment_intent_id"`
	Metadata        map[string]any `json:"metadata"`
}

type updateInvoiceAmountRequest struct {
	AmountCents int64 `json:"amount_cents" binding:"required"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	principal, ok := actingPrincipal(c)
	if !ok {
		AbortWithError(c, newValidationError("principal", "invalid_principal", "missing or invalid principal"))
		return
	}

	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	counterparty, ok := parseID(req.CounterpartyID)
	if !ok {
		AbortWithError(c, newValidationError("counterparty_id", "invalid_counterparty", "invalid counterparty id"))
		return
	}

	inv, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		OwnerID:         principal,
		CounterpartyID:  counterparty,
		AmountCents:     req.AmountCents,
		Currency:        req.Currency,
		PaymentIntentID: req.PaymentIntentID,
		Metadata:        req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, inv)
}

func (s *Server) ListInvoices(c *gin.Context) {
	principal, ok := actingPrincipal(c)
	if !ok {
		AbortWithError(c, newValidationError("principal", "invalid_principal", "missing or invalid principal"))
		return
	}

	invoices, err := s.invoiceSvc.ListByParticipant(c.Request.Context(), principal)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		AbortWithError(c, invalidRequestError())
		return
	}

	inv, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, inv)
}

func (s *Server) UpdateInvoiceAmount(c *gin.Context) {
	principal, ok := actingPrincipal(c)
	if !ok {
		AbortWithError(c, newValidationError("principal", "invalid_principal", "missing or invalid principal"))
		return
	}
	id, ok := pathID(c)
	if !ok {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req updateInvoiceAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	inv, err := s.invoiceSvc.UpdateAmount(c.Request.Context(), invoicedomain.UpdateAmountRequest{
		ID:              id,
		ActingPrincipal: principal,
		AmountCents:     req.AmountCents,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, inv)
}

func (s *Server) TransitionInvoice(c *gin.Context) {
	principal, ok := actingPrincipal(c)
	if !ok {
		AbortWithError(c, newValidationError("principal", "invalid_principal", "missing or invalid principal"))
		return
	}
	id, ok := pathID(c)
	if !ok {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	inv, err := s.invoiceSvc.Transition(c.Request.Context(), invoicedomain.TransitionRequest{
		ID:              id,
		ActingPrincipal: principal,
		RequestedStatus: lifecycle.Status(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, inv)
}
