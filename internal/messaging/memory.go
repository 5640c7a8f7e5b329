package messaging

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

const defaultMemoryQueueCapacity = 1024

// MemoryBroker keeps queues in process memory. Nothing survives a restart.
type MemoryBroker struct {
	mu       sync.Mutex
	queues   map[string]chan Delivery
	capacity int
}

func NewMemoryBroker(capacity int) *MemoryBroker {
	if capacity <= 0 {
		capacity = defaultMemoryQueueCapacity
	}
	return &MemoryBroker{
		queues:   make(map[string]chan Delivery),
		capacity: capacity,
	}
}

func (b *MemoryBroker) queue(name string) chan Delivery {
	b.mu.Lock()
	defer b.mu.Unlock()

	q, ok := b.queues[name]
	if !ok {
		q = make(chan Delivery, b.capacity)
		b.queues[name] = q
	}
	return q
}

// Len reports how many messages wait in the named queue.
func (b *MemoryBroker) Len(name string) int {
	return len(b.queue(name))
}

func (b *MemoryBroker) Dial(ctx context.Context) (Conn, error) {
	return &memoryConn{broker: b, closed: make(chan struct{})}, nil
}

type memoryConn struct {
	broker    *MemoryBroker
	closed    chan struct{}
	closeOnce sync.Once
}

func (c *memoryConn) NewSession(ctx context.Context) (Session, error) {
	select {
	case <-c.closed:
		return nil, ErrConnectionClosed
	default:
	}
	return &memorySession{conn: c, closed: make(chan struct{})}, nil
}

func (c *memoryConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

type memorySession struct {
	conn      *memoryConn
	closed    chan struct{}
	closeOnce sync.Once
}

func (s *memorySession) Publish(ctx context.Context, queue string, body []byte) error {
	if err := s.check(); err != nil {
		return err
	}

	d := Delivery{ID: uuid.NewString(), Queue: queue, Body: body}
	select {
	case s.conn.broker.queue(queue) <- d:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.closed:
		return ErrSessionClosed
	case <-s.conn.closed:
		return ErrConnectionClosed
	}
}

// Receive never takes a message once ctx is done or the session is closed,
// even when one is already waiting.
func (s *memorySession) Receive(ctx context.Context, queue string) (Delivery, error) {
	if err := s.check(); err != nil {
		return Delivery{}, err
	}
	if err := ctx.Err(); err != nil {
		return Delivery{}, err
	}

	select {
	case d := <-s.conn.broker.queue(queue):
		return d, nil
	case <-ctx.Done():
		return Delivery{}, ctx.Err()
	case <-s.closed:
		return Delivery{}, ErrSessionClosed
	case <-s.conn.closed:
		return Delivery{}, ErrConnectionClosed
	}
}

func (s *memorySession) check() error {
	select {
	case <-s.closed:
		return ErrSessionClosed
	case <-s.conn.closed:
		return ErrConnectionClosed
	default:
		return nil
	}
}

func (s *memorySession) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}
