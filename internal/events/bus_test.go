package events

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 8)

	var delivered atomic.Int64
	sub := bus.SubscribeFunc(TokenBought, func(context.Context, Event) error {
		delivered.Add(1)
		return nil
	})
	defer sub.Unsubscribe()

	for i := 0; i < 3; i++ {
		require.NoError(t, bus.Publish(BaseEvent{EventType: TokenBought, EventTime: time.Now()}))
	}
	require.NoError(t, bus.Shutdown(context.Background()))

	assert.Equal(t, int64(3), delivered.Load())
}

func TestBusRejectsPublishAfterShutdown(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 1)
	require.NoError(t, bus.Shutdown(context.Background()))

	err := bus.Publish(BaseEvent{EventType: TokenSold, EventTime: time.Now()})
	assert.ErrorIs(t, err, ErrBusClosed)
}

func TestBusUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 8)

	var delivered atomic.Int64
	sub := bus.SubscribeFunc(TokenSold, func(context.Context, Event) error {
		delivered.Add(1)
		return nil
	})
	sub.Unsubscribe()

	require.NoError(t, bus.Publish(BaseEvent{EventType: TokenSold, EventTime: time.Now()}))
	require.NoError(t, bus.Shutdown(context.Background()))

	assert.Zero(t, delivered.Load())
}
