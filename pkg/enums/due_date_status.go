package enums

// DueDateStatus buckets an unpaid invoice by how many days past due it is
// (DPD = days past due). Lunas marks invoices that are already settled.
type DueDateStatus string

const (
	DueDateLunas   DueDateStatus = "Lunas"
	DueDateCurrent DueDateStatus = "Current"
	DueDateBelow14 DueDateStatus = "Below 14 DPD"
	DueDate14DPD   DueDateStatus = "14 DPD"
	DueDate30DPD   DueDateStatus = "30 DPD"
	DueDate60DPD   DueDateStatus = "60 DPD"
)

// DueDateStatuses lists every bucket in aging order, Lunas last. Histograms
// iterate this to emit all buckets even when their count is zero.
var DueDateStatuses = []DueDateStatus{
	DueDateCurrent,
	DueDateBelow14,
	DueDate14DPD,
	DueDate30DPD,
	DueDate60DPD,
	DueDateLunas,
}

// String implements fmt.Stringer.
func (d DueDateStatus) String() string {
	return string(d)
}
