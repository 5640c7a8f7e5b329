package messaging

import (
	"context"
	"encoding/json"
	"fmt"
)

// JSONListener adapts a typed consumer into a Handler by decoding the
// delivery body into a fresh T for every message.
func JSONListener[T any](consume func(context.Context, *T) error) Handler {
	return func(ctx context.Context, d Delivery) error {
		var v T
		if err := json.Unmarshal(d.Body, &v); err != nil {
			return fmt.Errorf("decode message %s: %w", d.ID, err)
		}
		return consume(ctx, &v)
	}
}
