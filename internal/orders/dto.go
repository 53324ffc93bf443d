package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sakanusa/gerai-analytics-backend/pkg/enums"
)

// Filters describe the inputs supported by order listing and aggregation reads.
type Filters struct {
	StoreID       string
	Area          string
	Segment       string
	Hub           string
	PaymentStatus *enums.PaymentStatus
	PaymentType   *enums.PaymentType
	DateFrom      *time.Time
	DateTo        *time.Time
}

// OrderSummary exposes the fields returned in the order list.
type OrderSummary struct {
	ID            uuid.UUID           `json:"id"`
	OrderCode     string              `json:"order_code"`
	StoreID       string              `json:"store_id"`
	StoreName     string              `json:"store_name"`
	OrderDate     *time.Time          `json:"order_date,omitempty"`
	Area          string              `json:"area,omitempty"`
	Segment       string              `json:"segment,omitempty"`
	Hub           string              `json:"hub,omitempty"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	PaymentType   enums.PaymentType   `json:"payment_type,omitempty"`
	DueDate       *time.Time          `json:"due_date,omitempty"`
	InvoiceAmount decimal.Decimal     `json:"invoice_amount"`
	PaymentAmount decimal.Decimal     `json:"payment_amount"`
	Profit        decimal.Decimal     `json:"profit"`
	TotalItems    int                 `json:"total_items"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
