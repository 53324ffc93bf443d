package aggregate

import (
	"time"

	"github.com/sakanusa/gerai-analytics-backend/pkg/enums"
)

// Options makes the historical behavioral differences between dashboard
// pages explicit configuration. Each dashboard used to carry its own copy of
// the aggregation with silently diverging rules; the presets below pin down
// each page's rules in one place.
type Options struct {
	// Dedupe drops repeated order ids before aggregating, first occurrence
	// wins. On in every preset.
	Dedupe bool

	// PaidStatuses is the set of payment statuses counted toward the "paid"
	// side of the paid/unpaid split. The invoice dashboard also counts
	// WAITING VALIDATION BY FINANCE as paid; the sales dashboard does not.
	PaidStatuses map[enums.PaymentStatus]bool

	// ScopeMostRecentMonthOnly restricts product, area, segment, due-date and
	// payment-status breakdowns to the reference month. When false those
	// breakdowns cover the whole batch. Store, hub, series and overall
	// totals always cover the whole batch.
	ScopeMostRecentMonthOnly bool

	// ProfitFromLineItems re-derives order profit from line items, flooring
	// each line's (total - cost) at zero. When false the precomputed profit
	// field is trusted and added only when positive.
	ProfitFromLineItems bool

	// ReferenceMonth anchors "this month" metrics. Zero means "the most
	// recent month present in the batch".
	ReferenceMonth MonthKey

	// Now anchors store-status and due-date classification. Zero means
	// time.Now().UTC().
	Now time.Time
}

// InvoiceOptions is the invoice dashboard preset.
func InvoiceOptions() Options {
	return Options{
		Dedupe: true,
		PaidStatuses: map[enums.PaymentStatus]bool{
			enums.PaymentStatusLunas:             true,
			enums.PaymentStatusWaitingValidation: true,
		},
		ScopeMostRecentMonthOnly: true,
	}
}

// SalesOptions is the distribution sales dashboard preset: whole-batch
// breakdowns, profit re-derived from line items, strict LUNAS-only paid set.
func SalesOptions() Options {
	return Options{
		Dedupe: true,
		PaidStatuses: map[enums.PaymentStatus]bool{
			enums.PaymentStatusLunas: true,
		},
		ProfitFromLineItems: true,
	}
}

// OverviewOptions is the headline dashboard preset.
func OverviewOptions() Options {
	return Options{
		Dedupe: true,
		PaidStatuses: map[enums.PaymentStatus]bool{
			enums.PaymentStatusLunas: true,
		},
		ScopeMostRecentMonthOnly: true,
	}
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now().UTC()
	}
	return o.Now
}

func (o Options) isPaid(status enums.PaymentStatus) bool {
	return o.PaidStatuses[status]
}
