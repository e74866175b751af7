// Package redis holds the storefront's Redis access: refresh sessions,
// idempotency records and fixed-window rate counters, all under one key
// namespace.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	keyNamespace      = "sf"
	idempotencyPrefix = "idempotency"
	rateLimitPrefix   = "rate_limit"
	sessionPrefix     = "session"
)

var errNotInitialized = errors.New("redis client not initialized")

// cmdable is the slice of go-redis commands the client issues. ExpireNX
// needs Redis 7 or newer.
type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	GetDel(context.Context, string) *redis.StringCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
	Exists(context.Context, ...string) *redis.IntCmd
	Incr(context.Context, string) *redis.IntCmd
	ExpireNX(context.Context, string, time.Duration) *redis.BoolCmd
	PTTL(context.Context, string) *redis.DurationCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Client is safe for concurrent use. The zero value reports
// errNotInitialized from every command.
type Client struct {
	store cmdable
	raw   *redis.Client
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(context.Context) error
}

// IdempotencyStore exposes minimal operations used by idempotency helpers.
type IdempotencyStore interface {
	Get(context.Context, string) (string, error)
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
	Del(context.Context, ...string) error
}

// New dials Redis from cfg and fails unless the server answers PING.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"addr": opts.Addr, "db": opts.DB}), "redis.connected")
	}
	return &Client{store: raw, raw: raw}, nil
}

// optionsFromConfig prefers STOREFRONT_REDIS_URL. Discrete settings fill
// whatever the URL leaves unset.
func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	var opts *redis.Options
	switch {
	case cfg.URL != "":
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	case cfg.Address != "":
		opts = &redis.Options{Addr: cfg.Address, Password: cfg.Password}
	default:
		return nil, errors.New("redis url or address is required")
	}

	fillInt(&opts.DB, cfg.DB)
	fillInt(&opts.PoolSize, cfg.PoolSize)
	fillInt(&opts.MinIdleConns, cfg.MinIdleConns)
	fillDuration(&opts.DialTimeout, cfg.DialTimeout)
	fillDuration(&opts.ReadTimeout, cfg.ReadTimeout)
	fillDuration(&opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

func fillInt(dst *int, v int) {
	if *dst == 0 {
		*dst = v
	}
}

func fillDuration(dst *time.Duration, v time.Duration) {
	if *dst == 0 {
		*dst = v
	}
}

func (c *Client) cmd() (cmdable, error) {
	if c == nil || c.store == nil {
		return nil, errNotInitialized
	}
	return c.store, nil
}

// Set stores value at key. A zero ttl keeps the key forever.
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s, err := c.cmd()
	if err != nil {
		return err
	}
	return s.Set(ctx, key, value, ttl).Err()
}

// Get returns the value at key, or redis.Nil when it is absent.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	s, err := c.cmd()
	if err != nil {
		return "", err
	}
	return s.Get(ctx, key).Result()
}

// GetDel returns the value at key and deletes it atomically.
func (c *Client) GetDel(ctx context.Context, key string) (string, error) {
	s, err := c.cmd()
	if err != nil {
		return "", err
	}
	return s.GetDel(ctx, key).Result()
}

// SetNX stores value only when key is absent and reports whether it did.
func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s, err := c.cmd()
	if err != nil {
		return false, err
	}
	return s.SetNX(ctx, key, value, ttl).Result()
}

// Exists reports whether key is present.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	s, err := c.cmd()
	if err != nil {
		return false, err
	}
	n, err := s.Exists(ctx, key).Result()
	return n > 0, err
}

// IncrWithTTL increments key and gives it ttl unless it already expires.
// Setting the TTL with NX on every hit also repairs a counter whose first
// EXPIRE was lost.
func (c *Client) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s, err := c.cmd()
	if err != nil {
		return 0, err
	}
	count, err := s.Incr(ctx, key).Result()
	if err != nil || ttl <= 0 {
		return count, err
	}
	if err := s.ExpireNX(ctx, key, ttl).Err(); err != nil {
		return count, err
	}
	return count, nil
}

// RateWindow is the state of a fixed-window counter after one hit.
type RateWindow struct {
	Count   int64
	Limit   int64
	ResetIn time.Duration
}

// Allowed reports whether the hit fits inside the limit.
func (w RateWindow) Allowed() bool {
	return w.Count <= w.Limit
}

// FixedWindow counts one hit against scope. ResetIn is the remaining TTL, or
// the full window when Redis reports none.
func (c *Client) FixedWindow(ctx context.Context, scope string, limit int64, window time.Duration) (RateWindow, error) {
	s, err := c.cmd()
	if err != nil {
		return RateWindow{}, err
	}
	key := c.RateLimitKey(scope)
	count, err := c.IncrWithTTL(ctx, key, window)
	if err != nil {
		return RateWindow{}, err
	}
	win := RateWindow{Count: count, Limit: limit, ResetIn: window}
	if remaining, err := s.PTTL(ctx, key).Result(); err == nil && remaining > 0 {
		win.ResetIn = remaining
	}
	return win, nil
}

// IdempotencyKey returns a namespaced key for idempotency storage.
func (c *Client) IdempotencyKey(scope, id string) string {
	return buildKey(idempotencyPrefix, scope, id)
}

// RateLimitKey returns a namespaced key for rate limit counters.
func (c *Client) RateLimitKey(scope string) string {
	return buildKey(rateLimitPrefix, scope)
}

// AccessSessionKey returns the key holding the refresh digest of an access id.
func (c *Client) AccessSessionKey(accessID string) string {
	return buildKey(sessionPrefix, "access", accessID)
}

// Del removes keys. Missing keys are not an error.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	s, err := c.cmd()
	if err != nil {
		return err
	}
	return s.Del(ctx, keys...).Err()
}

func (c *Client) Ping(ctx context.Context) error {
	s, err := c.cmd()
	if err != nil {
		return err
	}
	return s.Ping(ctx).Err()
}

// Close releases the pool. Clients built around a fake store close as a no-op.
func (c *Client) Close() error {
	if c == nil || c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

// buildKey joins the namespace and the non-blank parts with ':'.
func buildKey(parts ...string) string {
	var b strings.Builder
	b.WriteString(keyNamespace)
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			b.WriteByte(':')
			b.WriteString(part)
		}
	}
	return b.String()
}
