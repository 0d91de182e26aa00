package shipments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/tienda-backend/pkg/enums"
	"github.com/angelmondragon/tienda-backend/pkg/fcm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTokens map[uint64]string

func (s stubTokens) PushToken(_ context.Context, userID uint64) (string, error) {
	return s[userID], nil
}

type stubSender struct {
	sent        []fcm.Message
	err         error
	block       bool
	hadDeadline bool
}

func (s *stubSender) Send(ctx context.Context, msg fcm.Message) (string, error) {
	_, s.hadDeadline = ctx.Deadline()
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, msg)
	return "projects/p/messages/1", nil
}

func TestPushNotifierSendsTitledMessage(t *testing.T) {
	sender := &stubSender{}
	n, err := NewPushNotifier(stubTokens{11: "device-abc"}, sender, nil, nil)
	require.NoError(t, err)

	require.NoError(t, n.Notify(context.Background(), 42, 11, enums.ShipmentStatusEnRoute))
	require.NoError(t, n.Notify(context.Background(), 42, 11, enums.ShipmentStatusDelivered))

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "device-abc", sender.sent[0].Token)
	assert.Equal(t, "Tu pedido va en camino", sender.sent[0].Title)
	assert.Equal(t, "Tu pedido fue entregado", sender.sent[1].Title)
	assert.Equal(t, "42", sender.sent[1].Data["venta_id"])
}

func TestPushNotifierSkipsWithoutTokenOrSender(t *testing.T) {
	sender := &stubSender{}
	n, err := NewPushNotifier(stubTokens{}, sender, nil, nil)
	require.NoError(t, err)
	require.NoError(t, n.Notify(context.Background(), 42, 11, enums.ShipmentStatusDelivered))
	assert.Empty(t, sender.sent)

	disabled, err := NewPushNotifier(stubTokens{11: "device-abc"}, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, disabled.Notify(context.Background(), 42, 11, enums.ShipmentStatusDelivered))
}

func TestPushNotifierReportsSendFailure(t *testing.T) {
	n, err := NewPushNotifier(stubTokens{11: "device-abc"}, &stubSender{err: errors.New("unregistered")}, nil, nil)
	require.NoError(t, err)
	assert.Error(t, n.Notify(context.Background(), 42, 11, enums.ShipmentStatusEnRoute))
}

func TestPushNotifierBoundsSlowSends(t *testing.T) {
	prev := pushTimeout
	pushTimeout = 20 * time.Millisecond
	t.Cleanup(func() { pushTimeout = prev })

	sender := &stubSender{block: true}
	n, err := NewPushNotifier(stubTokens{11: "device-abc"}, sender, nil, nil)
	require.NoError(t, err)

	err = n.Notify(context.Background(), 42, 11, enums.ShipmentStatusEnRoute)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, sender.hadDeadline)
}

func TestPhotoObjectName(t *testing.T) {
	name := photoObjectName(7, "", "image/webp")
	assert.Regexp(t, `^shipments/7/[0-9a-f-]{36}\.webp$`, name)

	_, err := photoMediaType("text/plain")
	assert.Error(t, err)
	mt, err := photoMediaType("Image/PNG; charset=binary")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mt)
}
