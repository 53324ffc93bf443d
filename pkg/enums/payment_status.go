package enums

import (
	"fmt"
	"strings"
)

// PaymentStatus mirrors the settlement states the upstream order system emits.
type PaymentStatus string

const (
	PaymentStatusLunas             PaymentStatus = "LUNAS"
	PaymentStatusBelumLunas        PaymentStatus = "BELUM LUNAS"
	PaymentStatusPartial           PaymentStatus = "PARTIAL"
	PaymentStatusWaitingValidation PaymentStatus = "WAITING VALIDATION BY FINANCE"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusLunas,
	PaymentStatusBelumLunas,
	PaymentStatusPartial,
	PaymentStatusWaitingValidation,
}

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentStatus.
func (p PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentStatus converts raw input into a PaymentStatus. Matching is
// case-insensitive so query parameters and event payloads agree.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
