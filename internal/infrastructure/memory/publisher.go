package memory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pashto-learning-app/backend/internal/application/auth"
)

// NoopPublisher stands in for RabbitMQ in local dev: the verification link is
// logged instead of mailed.
type NoopPublisher struct {
	log zerolog.Logger
}

func NewNoopPublisher(log zerolog.Logger) *NoopPublisher {
	return &NoopPublisher{log: log.With().Str("component", "noop-publisher").Logger()}
}

func (p *NoopPublisher) PublishVerifyEmail(ctx context.Context, evt auth.VerifyEmailEvent) error {
	p.log.Info().
		Str("user_id", evt.UserID).
		Str("url", evt.URL).
		Msg("verify email requested")
	return nil
}

func (p *NoopPublisher) Close() error { return nil }
