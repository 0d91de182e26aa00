package enums

import "fmt"

// PaymentMethodKind decides how an order's payment starts.
type PaymentMethodKind string

const (
	PaymentMethodKindImmediate      PaymentMethodKind = "immediate"
	PaymentMethodKindCashOnDelivery PaymentMethodKind = "cash_on_delivery"
	PaymentMethodKindGateway        PaymentMethodKind = "gateway"
)

var validPaymentMethodKinds = []PaymentMethodKind{
	PaymentMethodKindImmediate,
	PaymentMethodKindCashOnDelivery,
	PaymentMethodKindGateway,
}

// String implements fmt.Stringer.
func (k PaymentMethodKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known PaymentMethodKind.
func (k PaymentMethodKind) IsValid() bool {
	for _, candidate := range validPaymentMethodKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParsePaymentMethodKind converts raw input into a PaymentMethodKind.
func ParsePaymentMethodKind(value string) (PaymentMethodKind, error) {
	for _, candidate := range validPaymentMethodKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method kind %q", value)
}

// Deferred reports whether orders paid with this kind start pending.
func (k PaymentMethodKind) Deferred() bool {
	return k == PaymentMethodKindCashOnDelivery || k == PaymentMethodKindGateway
}

// InitialPaymentStatus is the status a new order starts with.
func (k PaymentMethodKind) InitialPaymentStatus() PaymentStatus {
	if k.Deferred() {
		return PaymentStatusPending
	}
	return PaymentStatusPaid
}
