package enums

import (
	"fmt"
	"strings"
)

// PaymentStatus tracks the payment side of an order.
type PaymentStatus string

const (
	// PaymentStatusNone only appears as the previous state of the first history row.
	PaymentStatusNone      PaymentStatus = "none"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusPaid,
	PaymentStatusFailed,
	PaymentStatusCancelled,
}

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentStatus an order can hold.
func (p PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentStatus converts raw input into a PaymentStatus. The legacy
// "pagado"/"pendiente" labels are accepted.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "pagado":
		return PaymentStatusPaid, nil
	case "pendiente":
		return PaymentStatusPending, nil
	case "fallido":
		return PaymentStatusFailed, nil
	case "cancelado":
		return PaymentStatusCancelled, nil
	}
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}

// FromGatewayStatus maps a provider collection status onto the internal status.
func FromGatewayStatus(providerStatus string) PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(providerStatus)) {
	case "approved":
		return PaymentStatusPaid
	case "in_process":
		return PaymentStatusPending
	default:
		return PaymentStatusFailed
	}
}

// CanTransitionByCallback reports whether a gateway callback may move an order
// from p to next. Paid orders never regress through a callback.
func (p PaymentStatus) CanTransitionByCallback(next PaymentStatus) bool {
	if p == next {
		return false
	}
	switch p {
	case PaymentStatusPending:
		return next == PaymentStatusPaid || next == PaymentStatusFailed
	case PaymentStatusFailed:
		return next == PaymentStatusPaid || next == PaymentStatusPending
	}
	return false
}
