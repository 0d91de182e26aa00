package payments

import (
	"time"

	"github.com/angelmondragon/tienda-backend/pkg/enums"
)

// CallbackAction describes what a gateway callback did to the order.
type CallbackAction string

const (
	CallbackTransitioned CallbackAction = "transitioned"
	CallbackDuplicate    CallbackAction = "duplicate"
	CallbackNoop         CallbackAction = "noop"
	CallbackIgnored      CallbackAction = "ignored"
)

// CallbackInput is the gateway redirect payload.
type CallbackInput struct {
	ExternalReference string
	ProviderStatus    string
}

type CallbackResult struct {
	OrderID  uint64
	Status   enums.PaymentStatus
	Action   CallbackAction
	Redirect string
}

// Options configures gateway calls and the buyer-facing redirect pages.
type Options struct {
	GatewayName string
	Timeout     time.Duration
	// CallbackURL receives the buyer after the gateway (GET /verificar-pago).
	CallbackURL string
	SuccessPage string
	PendingPage string
	FailurePage string
}

// RetryResult is returned when payment initiation is retried for an order.
type RetryResult struct {
	OrderID   uint64 `json:"venta_id"`
	InitPoint string `json:"init_point"`
}
