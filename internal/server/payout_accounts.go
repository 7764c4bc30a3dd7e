package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	payoutdomain "github.com/smallbiznis/trueup/internal/payoutaccount/domain"
)

type createPayoutAccountRequest struct {
	Email   string `json:"email" binding:"required"`
	Country string `json:"country"`
}

func (s *Server) CreatePayoutAccount(c *gin.Context) {
	principal, ok := actingPrincipal(c)
	if !ok {
		AbortWithError(c, newValidationError("principal", "invalid_principal", "missing or invalid principal"))
		return
	}

	var req createPayoutAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	account, err := s.payoutAccountSvc.Create(c.Request.Context(), payoutdomain.CreateAccountRequest{
		OwnerID: principal,
		Email:   req.Email,
		Country: req.Country,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

func (s *Server) GetPayoutAccountByOwner(c *gin.Context) {
	principal, ok := actingPrincipal(c)
	if !ok {
		AbortWithError(c, newValidationError("principal", "invalid_principal", "missing or invalid principal"))
		return
	}

	account, err := s.payoutAccountSvc.GetByOwner(c.Request.Context(), principal)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// RefreshPayoutAccount re-pulls the processor's account state on demand
// instead of waiting for the next scheduled sweep.
func (s *Server) RefreshPayoutAccount(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	account, changed, err := s.payoutAccountSvc.Refresh(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account": account,
		"changed": changed,
	})
}
