package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBroker_PublishReceive(t *testing.T) {
	ctx := context.Background()
	broker := NewMemoryBroker(0)
	conn, err := broker.Dial(ctx)
	require.NoError(t, err)
	defer conn.Close()

	session, err := conn.NewSession(ctx)
	require.NoError(t, err)

	require.NoError(t, session.Publish(ctx, "orders", []byte(`{"order_id":1}`)))
	require.NoError(t, session.Publish(ctx, "orders", []byte(`{"order_id":2}`)))
	assert.Equal(t, 2, broker.Len("orders"))

	first, err := session.Receive(ctx, "orders")
	require.NoError(t, err)
	second, err := session.Receive(ctx, "orders")
	require.NoError(t, err)

	assert.JSONEq(t, `{"order_id":1}`, string(first.Body))
	assert.JSONEq(t, `{"order_id":2}`, string(second.Body))
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 0, broker.Len("orders"))
}

func TestMemoryBroker_ReceiveHonoursContext(t *testing.T) {
	broker := NewMemoryBroker(1)
	conn, _ := broker.Dial(context.Background())
	session, _ := conn.NewSession(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := session.Receive(ctx, "orders")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryBroker_ClosedSessionAndConnection(t *testing.T) {
	ctx := context.Background()
	broker := NewMemoryBroker(1)
	conn, _ := broker.Dial(ctx)
	session, _ := conn.NewSession(ctx)

	done := make(chan error, 1)
	go func() {
		_, err := session.Receive(ctx, "orders")
		done <- err
	}()

	require.NoError(t, session.Close())
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSessionClosed)
	case <-time.After(time.Second):
		t.Fatal("receive did not return after session close")
	}

	require.NoError(t, conn.Close())
	_, err := conn.NewSession(ctx)
	assert.ErrorIs(t, err, ErrConnectionClosed)
}

func TestMemoryBroker_StoppedReceiveLeavesMessageQueued(t *testing.T) {
	broker := NewMemoryBroker(0)
	conn, err := broker.Dial(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	session, err := conn.NewSession(context.Background())
	require.NoError(t, err)
	require.NoError(t, session.Publish(context.Background(), "orders", []byte(`{}`)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 100; i++ {
		_, err := session.Receive(ctx, "orders")
		require.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, 1, broker.Len("orders"))

	require.NoError(t, session.Close())
	for i := 0; i < 100; i++ {
		_, err := session.Receive(context.Background(), "orders")
		require.ErrorIs(t, err, ErrSessionClosed)
	}
	assert.Equal(t, 1, broker.Len("orders"))
}
