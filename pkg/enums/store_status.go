package enums

// StoreStatus grades a store by how recently it last ordered. Active means an
// order within 30 days; D1 through D3 step in 30-day increments after that,
// and Inactive means more than 120 days (or no orders at all).
type StoreStatus string

const (
	StoreStatusActive   StoreStatus = "Active"
	StoreStatusD1       StoreStatus = "D1"
	StoreStatusD2       StoreStatus = "D2"
	StoreStatusD3       StoreStatus = "D3"
	StoreStatusInactive StoreStatus = "Inactive"
)

// String implements fmt.Stringer.
func (s StoreStatus) String() string {
	return string(s)
}
