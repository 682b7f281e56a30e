package relay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tcgconnect/tcgconnect-go/internal/model"
)

// Config holds Redis relay connection settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Channel is the pub/sub channel events are published on
	Channel string

	// Pool settings
	PoolSize     int
	MinIdleConns int
}

// DefaultConfig returns sensible defaults for the relay
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		Channel:      "tcgconnect:server:broadcast",
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// Redis publishes inter-server broadcasts over Redis pub/sub
type Redis struct {
	client *redis.Client
	cfg    Config
}

// New creates a Redis relay and verifies the connection
func New(cfg Config) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Redis{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis relay with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Redis {
	return &Redis{client: client, cfg: cfg}
}

// Ensure Redis implements the interface
var _ Relay = (*Redis)(nil)

// Publish sends one event envelope to the broadcast channel
func (r *Redis) Publish(ctx context.Context, gameID model.GameID, event model.EventType, payload any) error {
	msg := model.Envelope{
		Event: model.EventServerBroadcast,
		Data: ServerBroadcast{
			GameID:  gameID,
			Event:   event,
			Payload: payload,
		},
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.cfg.Channel, data).Err()
}

// Close closes the Redis connection
func (r *Redis) Close() error {
	return r.client.Close()
}
