package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mohammad-safakhou/oratriage/config"
)

const keyPrefix = "oratriage:run:"

// Conn opens a redis client and checks it answers PING.
func Conn(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        net.JoinHostPort(cfg.Host, cfg.Port),
		DialTimeout: cfg.Timeout,
		Password:    cfg.Password,
		DB:          cfg.DB,
	})
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	if pong != "PONG" {
		_ = client.Close()
		return nil, fmt.Errorf("expected PONG, got %s", pong)
	}
	return client, nil
}

// Redis stores snapshots under oratriage:run:{id} with an optional TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func key(runID string) string { return keyPrefix + runID }

func (r *Redis) Save(ctx context.Context, runID string, snapshot []byte) error {
	if runID == "" {
		return errors.New("run id required")
	}
	if err := r.client.Set(ctx, key(runID), snapshot, r.ttl).Err(); err != nil {
		return fmt.Errorf("save checkpoint %s: %w", runID, err)
	}
	return nil
}

func (r *Redis) Load(ctx context.Context, runID string) ([]byte, error) {
	data, err := r.client.Get(ctx, key(runID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint %s: %w", runID, err)
	}
	return data, nil
}
