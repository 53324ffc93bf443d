// Package ingest consumes order events from Pub/Sub and lands them in
// Postgres. Each event carries one full order; replays are deduplicated in
// Redis and upserts keep the orders table convergent.
package ingest

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Envelope is the stable message structure published on the orders topic.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// OrderPayload is the order record inside an envelope, as the upstream
// point-of-sale system exports it.
type OrderPayload struct {
	OrderCode     string            `json:"order_code" validate:"required"`
	StoreID       string            `json:"store_id" validate:"required"`
	StoreName     string            `json:"store_name" validate:"required"`
	OrderDate     *time.Time        `json:"order_date"`
	MonthLabel    string            `json:"month_label"`
	PaymentStatus string            `json:"payment_status" validate:"required"`
	PaymentType   string            `json:"payment_type"`
	DueDate       *time.Time        `json:"due_date"`
	Area          string            `json:"area"`
	Segment       string            `json:"segment"`
	SubSegment    string            `json:"sub_segment"`
	Hub           string            `json:"hub"`
	TotalInvoice  decimal.Decimal   `json:"total_invoice"`
	TotalPayment  decimal.Decimal   `json:"total_payment"`
	Profit        decimal.Decimal   `json:"profit"`
	Items         []LineItemPayload `json:"items" validate:"dive"`
}

// LineItemPayload is one product line inside an order payload.
type LineItemPayload struct {
	ProductID   string          `json:"product_id" validate:"required"`
	ProductName string          `json:"product_name" validate:"required"`
	Category    string          `json:"category"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	BuyPrice    decimal.Decimal `json:"buy_price"`
	Quantity    int64           `json:"qty"`
	NominalQty  int64           `json:"nominal_qty"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

var payloadValidator = validator.New()

// DecodeEnvelope parses and checks the raw message body.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if strings.TrimSpace(envelope.EventID) == "" {
		return nil, fmt.Errorf("event id missing")
	}
	if len(envelope.Data) == 0 {
		return nil, fmt.Errorf("event data missing")
	}
	return &envelope, nil
}

// DecodeOrder parses and validates the order payload inside an envelope.
func (e *Envelope) DecodeOrder() (*OrderPayload, error) {
	var payload OrderPayload
	if err := json.Unmarshal(e.Data, &payload); err != nil {
		return nil, fmt.Errorf("decode order payload: %w", err)
	}
	if err := payloadValidator.Struct(&payload); err != nil {
		return nil, fmt.Errorf("validate order payload: %w", err)
	}
	return &payload, nil
}
