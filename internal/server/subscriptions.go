package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListSubscriptions(c *gin.Context) {
	principal, ok := actingPrincipal(c)
	if !ok {
		AbortWithError(c, newValidationError("principal", "invalid_principal", "missing or invalid principal"))
		return
	}

	subs, err := s.subscriptionSvc.ListByOwner(c.Request.Context(), principal)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscriptions": subs})
}

func (s *Server) GetSubscriptionByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	sub, err := s.subscriptionSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// GetAuthoritativeSubscription returns the single record entitlement checks
// should trust when an owner holds several subscriptions.
func (s *Server) GetAuthoritativeSubscription(c *gin.Context) {
	principal, ok := actingPrincipal(c)
	if !ok {
		AbortWithError(c, newValidationError("principal", "invalid_principal", "missing or invalid principal"))
		return
	}

	sub, err := s.subscriptionSvc.GetAuthoritative(c.Request.Context(), principal)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}
