package messaging

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultRetryDelay = time.Second

// Container runs a fixed pool of sessions on one connection. Every session
// receives from the same queue in its own goroutine and calls the handler
// synchronously, so up to consumers handlers run at once. Messages handed
// to different sessions are processed in no particular order.
type Container struct {
	broker     Broker
	queue      string
	consumers  int
	handler    Handler
	logger     *slog.Logger
	retryDelay time.Duration

	mu       sync.Mutex
	started  bool
	conn     Conn
	sessions []Session
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewContainer creates a stopped container. consumers <= 0 means one session per CPU.
func NewContainer(broker Broker, queue string, consumers int, handler Handler, logger *slog.Logger) *Container {
	if consumers <= 0 {
		consumers = runtime.NumCPU()
	}
	return &Container{
		broker:     broker,
		queue:      queue,
		consumers:  consumers,
		handler:    handler,
		logger:     logger,
		retryDelay: defaultRetryDelay,
	}
}

// Start dials the connection and starts the receive loops. Calling it on a
// started container does nothing.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return nil
	}

	c.logger.Debug("Starting message listening container", "queue", c.queue, "consumers", c.consumers)

	conn, err := c.broker.Dial(ctx)
	if err != nil {
		return err
	}

	sessions := make([]Session, 0, c.consumers)
	for i := 0; i < c.consumers; i++ {
		session, err := conn.NewSession(ctx)
		if err != nil {
			for _, s := range sessions {
				s.Close()
			}
			conn.Close()
			return err
		}
		sessions = append(sessions, session)
	}

	// Handlers must outlive Stop so that in-flight orders finish.
	handlerCtx := context.WithoutCancel(ctx)
	loopCtx, cancel := context.WithCancel(handlerCtx)

	for i, session := range sessions {
		c.wg.Add(1)
		go c.listen(loopCtx, handlerCtx, i, session)
	}

	c.conn = conn
	c.sessions = sessions
	c.cancel = cancel
	c.started = true

	c.logger.Info("Message listening container started", "queue", c.queue, "sessions", len(sessions))
	return nil
}

func (c *Container) listen(ctx, handlerCtx context.Context, id int, session Session) {
	defer c.wg.Done()
	logger := c.logger.With("queue", c.queue, "session", id)

	for {
		d, err := session.Receive(ctx, c.queue)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrSessionClosed) || errors.Is(err, ErrConnectionClosed) {
				logger.Debug("Receive loop finished")
				return
			}
			logger.Error("Failed to receive message", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.retryDelay):
			}
			continue
		}

		c.dispatch(handlerCtx, logger, d)
	}
}

// dispatch runs the handler for an already acknowledged delivery.
func (c *Container) dispatch(ctx context.Context, logger *slog.Logger, d Delivery) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("Message handler panicked, message dropped", "message_id", d.ID, "panic", p)
		}
	}()

	if err := c.handler(ctx, d); err != nil {
		logger.Error("Message handler failed, message dropped", "message_id", d.ID, "error", err)
	}
}

// Stop ends the receive loops, waits for running handlers and closes every
// session and the connection. It does nothing when the container is not started.
func (c *Container) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return nil
	}

	c.logger.Debug("Shutting down message listening container", "queue", c.queue)
	c.cancel()

	var g errgroup.Group
	for _, session := range c.sessions {
		g.Go(session.Close)
	}
	err := g.Wait()

	c.wg.Wait()

	if cerr := c.conn.Close(); err == nil {
		err = cerr
	}

	c.conn = nil
	c.sessions = nil
	c.cancel = nil
	c.started = false

	c.logger.Info("Message listening container stopped", "queue", c.queue)
	return err
}

// SessionCount reports the number of open sessions.
func (c *Container) SessionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

func (c *Container) IsStarted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}
