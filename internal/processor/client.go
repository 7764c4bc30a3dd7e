// Package processor is the HTTP client for the external payment platform.
// It is the only package that talks to the processor; everything above it
// works with the typed snapshots it returns.
package processor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/trueup/internal/config"
	"go.uber.org/fx"
)

// Client issues form-encoded calls against the processor's REST surface.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		apiKey:  strings.TrimSpace(cfg.ProcessorAPIKey),
		baseURL: strings.TrimRight(cfg.ProcessorBaseURL, "/"),
		client:  &http.Client{Timeout: 12 * time.Second},
	}
}

type CreateSubscriptionParams struct {
	CustomerID    string
	PriceID       string
	TrialDays     int
	PromotionCode string
	Metadata      map[string]string
}

// CreateSubscription creates a subscription with the latest invoice's payment
// intent expanded so the caller can inspect the payment outcome without a
// second round trip.
func (c *Client) CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (*Subscription, error) {
	values := url.Values{}
	values.Set("customer", params.CustomerID)
	values.Set("items[0][price]", params.PriceID)
	values.Set("payment_behavior", "default_incomplete")
	values.Set("expand[]", "latest_invoice.payment_intent")
	if params.TrialDays > 0 {
		values.Set("trial_period_days", strconv.Itoa(params.TrialDays))
	}
	if params.PromotionCode != "" {
		values.Set("promotion_code", params.PromotionCode)
	}
	for k, v := range params.Metadata {
		values.Set("metadata["+k+"]", v)
	}

	var sub Subscription
	if err := c.do(ctx, http.MethodPost, "/v1/subscriptions", values, uuid.NewString(), &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (c *Client) RetrieveSubscription(ctx context.Context, id string) (*Subscription, error) {
	var sub Subscription
	if err := c.do(ctx, http.MethodGet, "/v1/subscriptions/"+url.PathEscape(id), nil, "", &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// AttachPaymentMethod attaches a payment method reference to the customer's
// billing identity.
func (c *Client) AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) error {
	values := url.Values{}
	values.Set("customer", customerID)
	return c.do(ctx, http.MethodPost, "/v1/payment_methods/"+url.PathEscape(paymentMethodID)+"/attach", values, "", nil)
}

// UpdateCustomer updates customer fields and returns the customer with its
// subscriptions expanded, which checkout uses to reuse an existing
// subscription without another remote call.
func (c *Client) UpdateCustomer(ctx context.Context, id string, fields url.Values) (*Customer, error) {
	values := url.Values{}
	for k, vs := range fields {
		for _, v := range vs {
			values.Add(k, v)
		}
	}
	values.Set("expand[]", "subscriptions")

	var cust Customer
	if err := c.do(ctx, http.MethodPost, "/v1/customers/"+url.PathEscape(id), values, "", &cust); err != nil {
		return nil, err
	}
	return &cust, nil
}

type CreateAccountParams struct {
	Email    string
	Country  string
	Metadata map[string]string
}

func (c *Client) CreateAccount(ctx context.Context, params CreateAccountParams) (*Account, error) {
	values := url.Values{}
	values.Set("type", "express")
	if params.Email != "" {
		values.Set("email", params.Email)
	}
	if params.Country != "" {
		values.Set("country", params.Country)
	}
	for k, v := range params.Metadata {
		values.Set("metadata["+k+"]", v)
	}

	var account Account
	if err := c.do(ctx, http.MethodPost, "/v1/accounts", values, uuid.NewString(), &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *Client) RetrieveAccount(ctx context.Context, id string) (*Account, error) {
	var account Account
	if err := c.do(ctx, http.MethodGet, "/v1/accounts/"+url.PathEscape(id), nil, "", &account); err != nil {
		return nil, err
	}
	return &account, nil
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, values url.Values, idempotencyKey string, out any) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	var bodyReader *strings.Reader
	if values != nil {
		bodyReader = strings.NewReader(values.Encode())
	} else {
		bodyReader = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if values != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			return &APIError{StatusCode: resp.StatusCode}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error.Message}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Module provides the processor client.
var Module = fx.Module("processor",
	fx.Provide(NewClient),
)
