package service

import (
	"context"

	"github.com/rs/zerolog"
)

// Publisher sends domain messages to the broker. A nil Publisher disables
// publishing.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// publish never fails the caller; the write it reports is already committed.
func publish(ctx context.Context, p Publisher, routingKey string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, routingKey, payload); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("routing_key", routingKey).Msg("publish failed")
	}
}
