package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	checkoutdomain "github.com/smallbiznis/trueup/internal/checkout/domain"
)

type checkoutRequest struct {
	Plan             string            `json:"plan" binding:"required"`
	PaymentMethodRef string            `json:"payment_method_ref" binding:"required"`
	PromoCode        string            `json:"promo_code"`
	Metadata         map[string]string `json:"metadata"`
}

func (s *Server) ProcessCheckout(c *gin.Context) {
	principal, ok := actingPrincipal(c)
	if !ok {
		AbortWithError(c, newValidationError("principal", "invalid_principal", "missing or invalid principal"))
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.checkoutSvc.ProcessPayment(c.Request.Context(), checkoutdomain.ProcessPaymentRequest{
		OwnerID:          principal,
		SelectedPlan:     req.Plan,
		PaymentMethodRef: req.PaymentMethodRef,
		PromoCode:        req.PromoCode,
		RequestMetadata:  req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscription_id":       resp.Completion.SubscriptionID,
		"status":                resp.Completion.Status,
		"payment_intent_status": resp.Completion.PaymentIntentStatus,
		"reused":                resp.Completion.Reused,
	})
}
