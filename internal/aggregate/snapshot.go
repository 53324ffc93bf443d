package aggregate

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sakanusa/gerai-analytics-backend/pkg/enums"
)

// StringSet is a set of identifiers that marshals as a sorted JSON array.
// Monthly active-store tracking needs set semantics, not arrays with manual
// contains checks.
type StringSet map[string]struct{}

// Add inserts v into the set.
func (s StringSet) Add(v string) {
	s[v] = struct{}{}
}

// Has reports membership.
func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Values returns the members sorted.
func (s StringSet) Values() []string {
	values := make([]string, 0, len(s))
	for v := range s {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// MarshalJSON renders the set as a sorted array.
func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// StoreSummary is the per-store rollup.
type StoreSummary struct {
	StoreID           string            `json:"store_id"`
	StoreName         string            `json:"store_name"`
	OrderCount        int               `json:"order_count"`
	TotalInvoice      decimal.Decimal   `json:"total_invoice"`
	TotalProfit       decimal.Decimal   `json:"total_profit"`
	AverageOrderValue decimal.Decimal   `json:"average_order_value"`
	ActiveMonths      StringSet         `json:"active_months"`
	Status            enums.StoreStatus `json:"status"`
	LastOrderDate     time.Time         `json:"last_order_date"`
	Orders            []Order           `json:"orders"`
}

// ProductSummary is the per-product rollup. PriceChanges counts how many
// times the incoming unit price differed from the previously seen one.
type ProductSummary struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	TotalInvoice decimal.Decimal `json:"total_invoice"`
	Quantity     int64           `json:"quantity"`
	AveragePrice decimal.Decimal `json:"average_price"`
	PriceChanges int             `json:"price_changes"`
	TotalProfit  decimal.Decimal `json:"total_profit"`

	lastPrice decimal.Decimal
	hasPrice  bool
}

// AreaSummary is the rollup shared by area breakdowns. The COD/TOP and
// paid/unpaid splits are invoice amounts.
type AreaSummary struct {
	Name          string          `json:"name"`
	OrderCount    int             `json:"order_count"`
	TotalInvoice  decimal.Decimal `json:"total_invoice"`
	TotalProfit   decimal.Decimal `json:"total_profit"`
	CODInvoice    decimal.Decimal `json:"cod_invoice"`
	TOPInvoice    decimal.Decimal `json:"top_invoice"`
	PaidInvoice   decimal.Decimal `json:"paid_invoice"`
	UnpaidInvoice decimal.Decimal `json:"unpaid_invoice"`
	Orders        []Order         `json:"orders"`
}

// SegmentSummary extends the area shape with the months the segment was
// active in.
type SegmentSummary struct {
	AreaSummary
	ActiveMonths StringSet `json:"active_months"`
}

// HubSummary is the per-processing-hub rollup.
type HubSummary struct {
	HubID        string          `json:"hub_id"`
	OrderCount   int             `json:"order_count"`
	TotalInvoice decimal.Decimal `json:"total_invoice"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
	TotalPayment decimal.Decimal `json:"total_payment"`
}

// PaymentStatusMetric is one cell of the reference-month payment breakdown.
type PaymentStatusMetric struct {
	Count        int             `json:"count"`
	TotalInvoice decimal.Decimal `json:"total_invoice"`
}

// SeriesPoint is one bucket of a chart series.
type SeriesPoint struct {
	Label        string          `json:"label"`
	OrderCount   int             `json:"order_count"`
	TotalInvoice decimal.Decimal `json:"total_invoice"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
}

// Totals are the whole-batch scalar aggregates.
type Totals struct {
	OrderCount    int             `json:"order_count"`
	StoreCount    int             `json:"store_count"`
	TotalInvoice  decimal.Decimal `json:"total_invoice"`
	TotalPayment  decimal.Decimal `json:"total_payment"`
	TotalProfit   decimal.Decimal `json:"total_profit"`
	PaidInvoice   decimal.Decimal `json:"paid_invoice"`
	UnpaidInvoice decimal.Decimal `json:"unpaid_invoice"`
	CODInvoice    decimal.Decimal `json:"cod_invoice"`
	TOPInvoice    decimal.Decimal `json:"top_invoice"`
}

// ThisMonthMetrics duplicates the reference-month numbers for headline tiles.
type ThisMonthMetrics struct {
	MonthLabel     string          `json:"month_label"`
	OrderCount     int             `json:"order_count"`
	TotalInvoice   decimal.Decimal `json:"total_invoice"`
	TotalProfit    decimal.Decimal `json:"total_profit"`
	ActiveStores   int             `json:"active_stores"`
	ActivationRate decimal.Decimal `json:"activation_rate"`
}

// Snapshot is the immutable aggregate produced by one Aggregate call. It is
// fully built before it is returned and never mutated afterwards; consumers
// read it and discard it when the next batch arrives.
type Snapshot struct {
	ReferenceMonth      string                                    `json:"reference_month"`
	Stores              map[string]*StoreSummary                  `json:"stores"`
	Products            map[string]*ProductSummary                `json:"products"`
	Areas               map[string]*AreaSummary                   `json:"areas"`
	Segments            map[string]*SegmentSummary                `json:"segments"`
	SubSegments         map[string]*SegmentSummary                `json:"sub_segments"`
	Hubs                map[string]*HubSummary                    `json:"hubs"`
	MonthlyActiveStores map[string]StringSet                      `json:"monthly_active_stores"`
	MonthlyOrderCounts  map[string]int                            `json:"monthly_order_counts"`
	DueDateHistogram    map[enums.DueDateStatus]int               `json:"due_date_histogram"`
	PaymentStatuses     map[enums.PaymentStatus]*PaymentStatusMetric `json:"payment_statuses"`
	Daily               []SeriesPoint                             `json:"daily"`
	Weekly              []SeriesPoint                             `json:"weekly"`
	Monthly             []SeriesPoint                             `json:"monthly"`
	Totals              Totals                                    `json:"totals"`
	ThisMonth           ThisMonthMetrics                          `json:"this_month"`
}

// StoreCountForMonth returns the distinct active-store count for a month label.
func (s *Snapshot) StoreCountForMonth(label string) int {
	return len(s.MonthlyActiveStores[label])
}
