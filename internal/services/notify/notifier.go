package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/morpion/internal/dependencies/clock"
)

// EventSignedUp is the event type published when an account is created
const EventSignedUp = "user.signed_up"

// Notifier delivers the signup notification carrying the confirmation token
type Notifier interface {
	NotifySignup(ctx context.Context, email, confirmationToken string) error
}

// SignupEvent is the payload of a user.signed_up event
type SignupEvent struct {
	Email             string    `json:"email"`
	ConfirmationToken string    `json:"confirmation_token"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// Envelope wraps an event with its type on the wire
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// LogNotifier writes signup events to the log. It stands in for mail
// delivery in development, so the token is part of the log line.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

var _ Notifier = (*LogNotifier)(nil)

func (n *LogNotifier) NotifySignup(ctx context.Context, email, confirmationToken string) error {
	n.logger.InfoContext(ctx, "published event",
		"event_type", EventSignedUp,
		"email", email,
		"confirmation_token", confirmationToken,
	)
	return nil
}

// RedisNotifier publishes signup events on a Redis Pub/Sub channel for the
// mailer to consume
type RedisNotifier struct {
	client  *redis.Client
	channel string
	clock   clock.Clock
}

// NewRedisNotifier creates a RedisNotifier publishing on channel
func NewRedisNotifier(client *redis.Client, channel string, clock clock.Clock) *RedisNotifier {
	return &RedisNotifier{
		client:  client,
		channel: channel,
		clock:   clock,
	}
}

var _ Notifier = (*RedisNotifier)(nil)

func (n *RedisNotifier) NotifySignup(ctx context.Context, email, confirmationToken string) error {
	payload, err := json.Marshal(SignupEvent{
		Email:             email,
		ConfirmationToken: confirmationToken,
		OccurredAt:        n.clock.Now(),
	})
	if err != nil {
		return err
	}
	data, err := json.Marshal(Envelope{Type: EventSignedUp, Payload: payload})
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, n.channel, data).Err()
}
