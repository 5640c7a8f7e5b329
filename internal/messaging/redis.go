package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	defaultPollTimeout = time.Second
	redisKeyPrefix     = "queue:"
)

// RedisBroker uses one redis list per queue. RPUSH publishes and BLPOP
// receives, so a message is gone from redis once a session holds it.
type RedisBroker struct {
	client      *redis.Client
	pollTimeout time.Duration
	newID       func() string
}

func NewRedisBroker(client *redis.Client, pollTimeout time.Duration) *RedisBroker {
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}
	return &RedisBroker{
		client:      client,
		pollTimeout: pollTimeout,
		newID:       uuid.NewString,
	}
}

func (b *RedisBroker) Dial(ctx context.Context) (Conn, error) {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisConn{broker: b}, nil
}

// Close releases the underlying client.
func (b *RedisBroker) Close() error {
	return b.client.Close()
}

type envelope struct {
	ID   string          `json:"id"`
	Body json.RawMessage `json:"body"`
}

type redisConn struct {
	broker *RedisBroker
	closed atomic.Bool
}

func (c *redisConn) NewSession(ctx context.Context) (Session, error) {
	if c.closed.Load() {
		return nil, ErrConnectionClosed
	}
	return &redisSession{conn: c}, nil
}

func (c *redisConn) Close() error {
	c.closed.Store(true)
	return nil
}

type redisSession struct {
	conn   *redisConn
	closed atomic.Bool
}

func (s *redisSession) check() error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	if s.conn.closed.Load() {
		return ErrConnectionClosed
	}
	return nil
}

func (s *redisSession) Publish(ctx context.Context, queue string, body []byte) error {
	if err := s.check(); err != nil {
		return err
	}

	data, err := json.Marshal(envelope{ID: s.conn.broker.newID(), Body: body})
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	if err := s.conn.broker.client.RPush(ctx, redisKeyPrefix+queue, string(data)).Err(); err != nil {
		return fmt.Errorf("redis rpush %s: %w", queue, err)
	}
	return nil
}

// Receive polls with BLPOP so that a closed session is noticed within one poll timeout.
func (s *redisSession) Receive(ctx context.Context, queue string) (Delivery, error) {
	key := redisKeyPrefix + queue
	for {
		if err := s.check(); err != nil {
			return Delivery{}, err
		}
		if err := ctx.Err(); err != nil {
			return Delivery{}, err
		}

		res, err := s.conn.broker.client.BLPop(ctx, s.conn.broker.pollTimeout, key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Delivery{}, ctxErr
			}
			return Delivery{}, fmt.Errorf("redis blpop %s: %w", queue, err)
		}
		if len(res) != 2 {
			return Delivery{}, fmt.Errorf("redis blpop %s: unexpected reply %v", queue, res)
		}

		var env envelope
		if err := json.Unmarshal([]byte(res[1]), &env); err != nil {
			return Delivery{}, fmt.Errorf("decode envelope: %w", err)
		}
		return Delivery{ID: env.ID, Queue: queue, Body: env.Body}, nil
	}
}

func (s *redisSession) Close() error {
	s.closed.Store(true)
	return nil
}
