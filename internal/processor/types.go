package processor

import (
	"encoding/json"
)

// Ref is a reference the processor may return either collapsed (a bare
// identifier string) or expanded (an embedded object). Only the identifier
// is retained either way.
type Ref struct {
	ID string
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		r.ID = ""
		return nil
	}
	if b[0] == '"' {
		return json.Unmarshal(b, &r.ID)
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	r.ID = obj.ID
	return nil
}

func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

// Price carries the price identifier and its product reference. The processor
// may return it collapsed to the price identifier alone.
type Price struct {
	ID      string `json:"id"`
	Product Ref    `json:"product"`
}

func (p *Price) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*p = Price{}
		return nil
	}
	if b[0] == '"' {
		p.Product = Ref{}
		return json.Unmarshal(b, &p.ID)
	}
	type alias Price
	var full alias
	if err := json.Unmarshal(b, &full); err != nil {
		return err
	}
	*p = Price(full)
	return nil
}

// SubscriptionItem is one line of a subscription.
type SubscriptionItem struct {
	ID    string `json:"id"`
	Price Price  `json:"price"`
}

// Subscription is the processor's subscription object. Timestamps are epoch
// seconds as reported on the wire.
type Subscription struct {
	ID               string `json:"id"`
	Customer         Ref    `json:"customer"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
	Created          int64  `json:"created"`
	Items            struct {
		Data []SubscriptionItem `json:"data"`
	} `json:"items"`
	LatestInvoice *Invoice          `json:"latest_invoice,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Invoice is the processor's invoice object, reduced to the fields checkout
// inspects. payment_intent is expandable.
type Invoice struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	PaymentIntent *PaymentIntent `json:"payment_intent,omitempty"`
}

func (i *Invoice) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*i = Invoice{}
		return nil
	}
	if b[0] == '"' {
		*i = Invoice{}
		return json.Unmarshal(b, &i.ID)
	}
	type alias Invoice
	var full alias
	if err := json.Unmarshal(b, &full); err != nil {
		return err
	}
	*i = Invoice(full)
	return nil
}

// PaymentIntent is the processor's payment intent, expandable from its
// identifier.
type PaymentIntent struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (p *PaymentIntent) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*p = PaymentIntent{}
		return nil
	}
	if b[0] == '"' {
		*p = PaymentIntent{}
		return json.Unmarshal(b, &p.ID)
	}
	type alias PaymentIntent
	var full alias
	if err := json.Unmarshal(b, &full); err != nil {
		return err
	}
	*p = PaymentIntent(full)
	return nil
}

// Account is the processor's connected account object.
type Account struct {
	ID               string `json:"id"`
	DetailsSubmitted bool   `json:"details_submitted"`
	ChargesEnabled   bool   `json:"charges_enabled"`
	PayoutsEnabled   bool   `json:"payouts_enabled"`
}

// Customer is the processor's customer object with subscriptions expanded,
// as returned by UpdateCustomer.
type Customer struct {
	ID            string `json:"id"`
	Subscriptions struct {
		Data []Subscription `json:"data"`
	} `json:"subscriptions"`
}

// Event is a verified webhook event. Data.Raw holds the event object exactly
// as delivered so each handler decodes the shape it expects.
type Event struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Raw json.RawMessage `json:"object"`
	} `json:"data"`
}
