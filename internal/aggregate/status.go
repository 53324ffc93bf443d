package aggregate

import (
	"math"
	"time"

	"github.com/sakanusa/gerai-analytics-backend/pkg/enums"
)

const millisPerDay = 24 * 60 * 60 * 1000

// ClassifyDueDate buckets an invoice by days past due at the reference
// instant. Settled invoices are Lunas no matter the due date. Elapsed days
// use ceiling division of the millisecond difference, so an invoice becomes
// "1 day past due" the instant its due date passes.
func ClassifyDueDate(dueDate time.Time, status enums.PaymentStatus, now time.Time) enums.DueDateStatus {
	if status == enums.PaymentStatusLunas {
		return enums.DueDateLunas
	}

	days := int(math.Ceil(float64(now.Sub(dueDate).Milliseconds()) / millisPerDay))
	switch {
	case days < 0:
		return enums.DueDateCurrent
	case days < 14:
		return enums.DueDateBelow14
	case days < 30:
		return enums.DueDate14DPD
	case days < 60:
		return enums.DueDate30DPD
	default:
		return enums.DueDate60DPD
	}
}

// StoreStatusFor grades a store by the age of its most recent order:
// 30-day steps from Active down to Inactive. A store that never ordered
// (zero lastOrder) is Inactive.
func StoreStatusFor(lastOrder, now time.Time) enums.StoreStatus {
	if lastOrder.IsZero() {
		return enums.StoreStatusInactive
	}

	days := int(now.Sub(lastOrder).Hours() / 24)
	switch {
	case days <= 30:
		return enums.StoreStatusActive
	case days <= 60:
		return enums.StoreStatusD1
	case days <= 90:
		return enums.StoreStatusD2
	case days <= 120:
		return enums.StoreStatusD3
	default:
		return enums.StoreStatusInactive
	}
}
