// Package messaging moves orders from the HTTP layer to the processing
// workers through a named queue.
//
// Messages are acknowledged when Receive returns them. A handler that fails
// or panics afterwards loses the message; there is no redelivery.
package messaging

import (
	"context"
	"errors"
)

var (
	ErrSessionClosed    = errors.New("messaging: session closed")
	ErrConnectionClosed = errors.New("messaging: connection closed")
)

// Delivery is a single message taken off a queue.
type Delivery struct {
	ID    string
	Queue string
	Body  []byte
}

// Handler processes one delivery. Returned errors are logged, never retried.
type Handler func(ctx context.Context, d Delivery) error

// Broker hands out connections to a message transport.
type Broker interface {
	Dial(ctx context.Context) (Conn, error)
}

// Conn is a connection shared by any number of sessions.
type Conn interface {
	NewSession(ctx context.Context) (Session, error)
	Close() error
}

// Session is used by one goroutine at a time.
type Session interface {
	Publish(ctx context.Context, queue string, body []byte) error
	// Receive blocks until a message arrives, ctx is done or the session is closed.
	Receive(ctx context.Context, queue string) (Delivery, error)
	Close() error
}
