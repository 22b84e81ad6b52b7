package notify

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/andrzejf1994/ha-ios-nextalarm/internal/logger"
)

// message is the wire shape published to the Redis channel.
type message struct {
	Signal  string `json:"signal"`
	Payload any    `json:"payload,omitempty"`
}

// Redis publishes every signal as a JSON message on one pub/sub channel.
type Redis struct {
	// client is the shared Redis connection.
	client *redis.Client
	// channel is the pub/sub channel name.
	channel string
}

// NewRedis creates a dispatcher publishing to the given channel.
func NewRedis(client *redis.Client, channel string) *Redis {
	return &Redis{
		client:  client,
		channel: channel,
	}
}

// Send publishes the signal. Publish failures are logged, not propagated:
// a broken notification channel must not block state processing.
func (r *Redis) Send(ctx context.Context, signal string, payload any) {
	data, err := json.Marshal(message{Signal: signal, Payload: payload})
	if err != nil {
		logger.ErrorKV(ctx, "Failed to encode notification", "signal", signal, "error", err)

		return
	}

	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		logger.ErrorKV(ctx, "Failed to publish notification", "signal", signal, "error", err)
	}
}
