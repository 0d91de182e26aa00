package shipments

import (
	"context"
	"fmt"
	"strconv"

	"github.com/angelmondragon/tienda-backend/pkg/enums"
	"github.com/angelmondragon/tienda-backend/pkg/fcm"
	"github.com/angelmondragon/tienda-backend/pkg/logger"
	"github.com/angelmondragon/tienda-backend/pkg/metrics"
)

// Notifier tells the order owner that the shipment reached a new stage.
type Notifier interface {
	Notify(ctx context.Context, orderID, userID uint64, status enums.ShipmentStatus) error
}

type tokenSource interface {
	PushToken(ctx context.Context, userID uint64) (string, error)
}

type pushSender interface {
	Send(ctx context.Context, msg fcm.Message) (string, error)
}

// PushNotifier delivers shipment notifications to the owner's registered
// device. With a nil sender (push disabled) it does nothing.
type PushNotifier struct {
	tokens  tokenSource
	sender  pushSender
	metrics *metrics.OrderMetrics
	logg    *logger.Logger
}

func NewPushNotifier(tokens tokenSource, sender pushSender, m *metrics.OrderMetrics, logg *logger.Logger) (*PushNotifier, error) {
	if tokens == nil {
		return nil, fmt.Errorf("push token source required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &PushNotifier{tokens: tokens, sender: sender, metrics: m, logg: logg}, nil
}

func (n *PushNotifier) Notify(ctx context.Context, orderID, userID uint64, status enums.ShipmentStatus) error {
	if n.sender == nil {
		n.metrics.IncNotification("disabled")
		return nil
	}
	msg, ok := shipmentMessage(orderID, status)
	if !ok {
		return nil
	}

	token, err := n.tokens.PushToken(ctx, userID)
	if err != nil {
		n.metrics.IncNotification("failed")
		return fmt.Errorf("lookup push token: %w", err)
	}
	if token == "" {
		n.metrics.IncNotification("no_token")
		n.logg.Info(n.logg.WithUserID(ctx, userID), "shipment.notify.no_token")
		return nil
	}
	msg.Token = token

	sendCtx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()
	receipt, err := n.sender.Send(sendCtx, msg)
	if err != nil {
		n.metrics.IncNotification("failed")
		return fmt.Errorf("send push: %w", err)
	}
	n.metrics.IncNotification("sent")
	n.logg.Info(n.logg.WithFields(ctx, map[string]any{"receipt": receipt, "shipment_status": status}), "shipment.notify.sent")
	return nil
}

func shipmentMessage(orderID uint64, status enums.ShipmentStatus) (fcm.Message, bool) {
	data := map[string]string{
		"venta_id": strconv.FormatUint(orderID, 10),
		"estado":   status.String(),
	}
	switch enums.NormalizeShipmentStatus(status.String()) {
	case enums.ShipmentStatusEnRoute:
		return fcm.Message{
			Title: "Tu pedido va en camino",
			Body:  fmt.Sprintf("Tu pedido #%d salió a reparto.", orderID),
			Data:  data,
		}, true
	case enums.ShipmentStatusDelivered:
		return fcm.Message{
			Title: "Tu pedido fue entregado",
			Body:  fmt.Sprintf("Tu pedido #%d fue entregado. ¡Gracias por tu compra!", orderID),
			Data:  data,
		}, true
	}
	return fcm.Message{}, false
}
