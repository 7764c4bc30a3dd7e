package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/trueup/internal/lifecycle"
	workorderdomain "github.com/smallbiznis/trueup/internal/workorder/domain"
)

type createWorkOrderRequest struct {
	CounterpartyID string         `json:"counterparty_id" binding:"required"`
	Title          string         `json:"title" binding:"required"`
	Metadata       map[string]any `json:"metadata"`
}

type transitionRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) CreateWorkOrder(c *gin.Context) {
	principal, ok := actingPrincipal(c)
	if !ok {
		AbortWithError(c, newValidationError("principal", "invalid_principal", "missing or invalid principal"))
		return
	}

	var req createWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	counterparty, ok := parseID(req.CounterpartyID)
	if !ok {
		AbortWithError(c, newValidationError("counterparty_id", "invalid_counterparty", "invalid counterparty id"))
		return
	}

	order, err := s.workOrderSvc.Create(c.Request.Context(), workorderdomain.CreateWorkOrderRequest{
		OwnerID:        principal,
		CounterpartyID: counterparty,
		Title:          req.Title,
		Metadata:       req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (s *Server) ListWorkOrders(c *gin.Context) {
	principal, ok := actingPrincipal(c)
	if !ok {
		AbortWithError(c, newValidationError("principal", "invalid_principal", "missing or invalid principal"))
		return
	}

	orders, err := s.workOrderSvc.ListByParticipant(c.Request.Context(), principal)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"work_orders": orders})
}

func (s *Server) GetWorkOrderByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		AbortWithError(c, invalidRequestError())
		return
	}

	order, err := s.workOrderSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (s *Server) TransitionWorkOrder(c *gin.Context) {
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

	order, err := s.workOrderSvc.Transition(c.Request.Context(), workorderdomain.TransitionRequest{
		ID:              id,
		ActingPrincipal: principal,
		RequestedStatus: lifecycle.Status(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (s *Server) DeleteWorkOrder(c *gin.Context) {
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

	if err := s.workOrderSvc.Delete(c.Request.Context(), id, principal); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
