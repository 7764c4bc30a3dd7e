package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/trueup/internal/authz"
	checkoutdomain "github.com/smallbiznis/trueup/internal/checkout/domain"
	invoicedomain "github.com/smallbiznis/trueup/internal/invoice/domain"
	"github.com/smallbiznis/trueup/internal/lifecycle"
	payoutdomain "github.com/smallbiznis/trueup/internal/payoutaccount/domain"
	"github.com/smallbiznis/trueup/internal/processor"
	subscriptiondomain "github.com/smallbiznis/trueup/internal/subscription/domain"
	workorderdomain "github.com/smallbiznis/trueup/internal/workorder/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var illegal *lifecycle.IllegalTransitionError
	if errors.As(err, &illegal) {
		return http.StatusBadRequest, errorPayload{
			Type:    "illegal_transition",
			Message: illegal.Error(),
		}
	}

	var forbidden *authz.ForbiddenError
	if errors.As(err, &forbidden) {
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: forbidden.Error(),
		}
	}

	var paymentRequired *checkoutdomain.PaymentRequiredError
	if errors.As(err, &paymentRequired) {
		return http.StatusPaymentRequired, errorPayload{
			Type:    "payment_required",
			Message: paymentRequired.Error(),
		}
	}

	var verification *processor.VerificationError
	if errors.As(err, &verification) {
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_signature",
			Message: "webhook signature verification failed",
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, payoutdomain.ErrAlreadyExists):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, checkoutdomain.ErrUnknownPlan),
		errors.Is(err, checkoutdomain.ErrInvalidPromoCode),
		errors.Is(err, checkoutdomain.ErrNoBillingIdentity),
		errors.Is(err, checkoutdomain.ErrInvalidOwner),
		errors.Is(err, subscriptiondomain.ErrInvalidOwner),
		errors.Is(err, payoutdomain.ErrInvalidOwner),
		errors.Is(err, workorderdomain.ErrInvalidOwner),
		errors.Is(err, workorderdomain.ErrInvalidCounterparty),
		errors.Is(err, workorderdomain.ErrNotDeletable),
		errors.Is(err, invoicedomain.ErrInvalidOwner),
		errors.Is(err, invoicedomain.ErrInvalidAmount):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, subscriptiondomain.ErrNotFound),
		errors.Is(err, payoutdomain.ErrNotFound),
		errors.Is(err, workorderdomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
