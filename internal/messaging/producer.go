package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Producer publishes JSON encoded values onto one queue.
// Each Send uses a short-lived session of the shared connection.
type Producer struct {
	conn  Conn
	queue string
}

func NewProducer(conn Conn, queue string) *Producer {
	return &Producer{
		conn:  conn,
		queue: queue,
	}
}

func (p *Producer) Send(ctx context.Context, v any) error {
	if v == nil {
		return errors.New("messaging: nil message")
	}

	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	session, err := p.conn.NewSession(ctx)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer session.Close()

	return session.Publish(ctx, p.queue, body)
}
