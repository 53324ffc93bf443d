package enums

import (
	"fmt"
	"strings"
)

// PaymentType distinguishes cash-on-delivery orders from term-of-payment (credit) orders.
type PaymentType string

const (
	PaymentTypeCOD PaymentType = "COD"
	PaymentTypeTOP PaymentType = "TOP"
)

var validPaymentTypes = []PaymentType{
	PaymentTypeCOD,
	PaymentTypeTOP,
}

// String implements fmt.Stringer.
func (p PaymentType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentType.
func (p PaymentType) IsValid() bool {
	for _, candidate := range validPaymentTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentType converts raw input into a PaymentType. Matching is
// case-insensitive so query parameters and event payloads agree.
func ParsePaymentType(value string) (PaymentType, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validPaymentTypes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment type %q", value)
}
