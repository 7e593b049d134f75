package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/garrettladley/wext/internal/panel"
	go_json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

var _ Backend = (*RedisBackend)(nil)

const (
	rateLimitKeyPrefix = "wext:ratelimit:"
	panelKeyPrefix     = "wext:panel:"
)

type RedisConfig struct {
	Client *redis.Client
	// RateLimit is the number of requests allowed per RateWindow.
	RateLimit  int
	RateWindow time.Duration
}

type RedisBackend struct {
	client     *redis.Client
	rateLimit  int
	rateWindow time.Duration
}

func NewRedisBackend(cfg RedisConfig) *RedisBackend {
	window := cfg.RateWindow
	if window <= 0 {
		window = time.Second
	}
	return &RedisBackend{
		client:     cfg.Client,
		rateLimit:  cfg.RateLimit,
		rateWindow: window,
	}
}

func (r *RedisBackend) Allow(ctx context.Context, key string) (RateLimitResult, error) {
	params := rateLimitParams{
		window: r.rateWindow,
		limit:  r.rateLimit,
		ttl:    r.rateWindow + time.Second,
		now:    time.Now(),
	}

	res, err := runRateLimitScript(ctx, r.client, rateLimitKeyPrefix+key, params)
	if err != nil {
		return RateLimitResult{}, err
	}
	return res, nil
}

func (r *RedisBackend) GetPanel(ctx context.Context, sessionID string) (panel.State, error) {
	data, err := r.client.Get(ctx, panelKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return panel.State{}, ErrNotFound
	}
	if err != nil {
		return panel.State{}, fmt.Errorf("failed to get panel: %w", err)
	}

	var state panel.State
	if err := go_json.Unmarshal(data, &state); err != nil {
		return panel.State{}, fmt.Errorf("failed to unmarshal panel: %w", err)
	}
	return state, nil
}

func (r *RedisBackend) PutPanel(ctx context.Context, sessionID string, state panel.State, ttl time.Duration) error {
	data, err := go_json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal panel: %w", err)
	}

	if err := r.client.Set(ctx, panelKeyPrefix+sessionID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set panel: %w", err)
	}
	return nil
}

func (r *RedisBackend) TouchPanel(ctx context.Context, sessionID string, ttl time.Duration) error {
	ok, err := r.client.Expire(ctx, panelKeyPrefix+sessionID, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to renew panel: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *RedisBackend) DeletePanel(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, panelKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete panel: %w", err)
	}
	return nil
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}

func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
