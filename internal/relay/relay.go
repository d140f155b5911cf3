// Package relay fans bill change tokens out across server instances over
// Redis pub/sub. Every instance publishes the tokens it produces and
// delivers every token it receives to its own viewers, including its own.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "splitclaim:bill:"

// Broadcaster delivers a message to this instance's viewers of a bill.
type Broadcaster interface {
	Broadcast(ctx context.Context, billID string, msg []byte) error
}

// Relay publishes change tokens and forwards received ones to a local
// Broadcaster.
type Relay struct {
	client *redis.Client
	local  Broadcaster
}

// New creates a relay over client delivering into local.
func New(client *redis.Client, local Broadcaster) *Relay {
	return &Relay{client: client, local: local}
}

// Dial connects to the Redis server at url and checks it responds.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Channel returns the pub/sub channel carrying billID's tokens.
func Channel(billID string) string {
	return channelPrefix + billID
}

func billFromChannel(channel string) (string, bool) {
	billID, ok := strings.CutPrefix(channel, channelPrefix)
	return billID, ok && billID != ""
}

// Notify publishes token for billID to every instance.
func (r *Relay) Notify(ctx context.Context, billID, token string) error {
	if err := r.client.Publish(ctx, Channel(billID), token).Err(); err != nil {
		return fmt.Errorf("failed to publish change token: %w", err)
	}
	return nil
}

// Run delivers relayed tokens to the local broadcaster until ctx ends.
// ready, when non-nil, is closed once the subscription is confirmed.
func (r *Relay) Run(ctx context.Context, ready chan<- struct{}) error {
	pubsub := r.client.PSubscribe(ctx, channelPrefix+"*")
	defer func() {
		_ = pubsub.Close()
	}()

	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to subscribe to change tokens: %w", err)
	}
	if ready != nil {
		close(ready)
	}
	slog.Info("Relay subscribed", "pattern", channelPrefix+"*")

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.deliver(ctx, msg)
		case <-ctx.Done():
			return nil
		}
	}
}

func (r *Relay) deliver(ctx context.Context, msg *redis.Message) {
	billID, ok := billFromChannel(msg.Channel)
	if !ok {
		slog.Warn("Relay dropped message on unexpected channel", "channel", msg.Channel)
		return
	}

	if err := r.local.Broadcast(ctx, billID, []byte(msg.Payload)); err != nil {
		slog.Debug("Relay delivery failed", "bill_id", billID, "error", err)
	}
}
