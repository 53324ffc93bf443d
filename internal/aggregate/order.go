package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sakanusa/gerai-analytics-backend/pkg/enums"
)

// Order is the aggregator's input record: one order as the upstream order
// system reports it. Monetary fields default to zero when the source omits
// them; the aggregator never treats a missing amount as an error.
type Order struct {
	ID            string              `json:"id"`
	StoreID       string              `json:"store_id"`
	StoreName     string              `json:"store_name"`
	OrderDate     time.Time           `json:"order_date"`
	MonthLabel    string              `json:"month_label"`
	Area          string              `json:"area"`
	PaymentType   enums.PaymentType   `json:"payment_type"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	DueDate       time.Time           `json:"due_date"`
	TotalInvoice  decimal.Decimal     `json:"total_invoice"`
	TotalPayment  decimal.Decimal     `json:"total_payment"`
	Profit        decimal.Decimal     `json:"profit"`
	HubID         string              `json:"hub_id"`
	Segment       string              `json:"segment"`
	SubSegment    string              `json:"sub_segment"`
	Items         []LineItem          `json:"items,omitempty"`
}

// LineItem is one product line within an order.
type LineItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int64           `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
	BuyPrice    decimal.Decimal `json:"buy_price"`
	Category    string          `json:"category"`
	NominalQty  int64           `json:"nominal_qty,omitempty"`
}

// month resolves the order's canonical month. The free-text month label wins
// when it parses; otherwise the order date is used. Orders with neither stay
// out of month-scoped metrics but still count toward overall totals.
func (o Order) month() (MonthKey, bool) {
	if key, ok := ParseMonthLabel(o.MonthLabel); ok {
		return key, true
	}
	if !o.OrderDate.IsZero() {
		return MonthKeyFor(o.OrderDate), true
	}
	return 0, false
}

// profitContribution returns the order's profit under the configured rule:
// either re-derived from line items with per-line flooring at zero, or the
// precomputed profit field taken only when positive.
func (o Order) profitContribution(fromLineItems bool) decimal.Decimal {
	if !fromLineItems {
		if o.Profit.IsPositive() {
			return o.Profit
		}
		return decimal.Zero
	}

	total := decimal.Zero
	for _, item := range o.Items {
		cost := item.BuyPrice.Mul(decimal.NewFromInt(item.Quantity))
		line := item.LineTotal.Sub(cost)
		if line.IsNegative() {
			continue
		}
		total = total.Add(line)
	}
	return total
}
