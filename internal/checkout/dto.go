package checkout

import (
	"github.com/angelmondragon/tienda-backend/internal/checkout/helpers"
	"github.com/angelmondragon/tienda-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

const (
	MessagePurchased           = "purchase completed"
	MessagePendingConfirmation = "order registered, pending payment confirmation"
	MessageRedirect            = "order registered, continue to payment"
	MessagePaymentSetupFailed  = "payment setup failed, order retained"
)

// Input is a checkout request for the authenticated user.
type Input struct {
	UserID          uint64
	Lines           []helpers.Line
	Total           decimal.Decimal
	PaymentMethodID uint64
	ShippingAddress *string
}

// Result tells the client what to do next. At most one of InitPoint,
// Redirect or PaymentError is set.
type Result struct {
	Message       string              `json:"message"`
	OrderID       uint64              `json:"venta_id"`
	PaymentStatus enums.PaymentStatus `json:"estado_pago"`
	InitPoint     string              `json:"init_point,omitempty"`
	Redirect      string              `json:"redirect,omitempty"`
	PaymentError  bool                `json:"payment_error,omitempty"`
}
