// Package session tracks refresh sessions in Redis. Each access token id (the
// JWT jti) owns one key whose value is the SHA-256 digest of the refresh token
// issued with it; the raw refresh token only ever reaches the client.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	redisclient "github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

const refreshTokenBytes = 32

var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	errMissingAccessID     = errors.New("access id is required")
)

// Store is the Redis surface sessions need. *redis.Client satisfies it.
type Store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	GetDel(ctx context.Context, key string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, keys ...string) error
	AccessSessionKey(accessID string) string
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

type Manager struct {
	store Store
	ttl   time.Duration
}

// NewManager requires the refresh TTL to outlive the access TTL, otherwise a
// client could never refresh before its access token expired.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return newManager(client, cfg.RefreshTokenTTL(), cfg.AccessTokenTTL())
}

func newManager(store Store, refreshTTL, accessTTL time.Duration) (*Manager, error) {
	switch {
	case refreshTTL <= 0:
		return nil, errors.New("refresh token ttl must be positive")
	case refreshTTL <= accessTTL:
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", refreshTTL, accessTTL)
	}
	return &Manager{store: store, ttl: refreshTTL}, nil
}

func (m *Manager) key(accessID string) (string, error) {
	if strings.TrimSpace(accessID) == "" {
		return "", errMissingAccessID
	}
	return m.store.AccessSessionKey(accessID), nil
}

// Generate opens a session for accessID and returns its refresh token.
func (m *Manager) Generate(ctx context.Context, accessID string) (string, error) {
	key, err := m.key(accessID)
	if err != nil {
		return "", err
	}
	token, err := newRefreshToken()
	if err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, key, digest(token), m.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Rotate consumes the session of oldAccessID and opens a new one, returning
// the new access id and refresh token. The old entry is taken with GETDEL so
// two concurrent refreshes cannot both win, and a wrong token still burns it.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if strings.TrimSpace(provided) == "" {
		return "", "", ErrInvalidRefreshToken
	}
	key, err := m.key(oldAccessID)
	if err != nil {
		return "", "", ErrInvalidRefreshToken
	}

	stored, err := m.store.GetDel(ctx, key)
	switch {
	case errors.Is(err, redislib.Nil):
		return "", "", ErrInvalidRefreshToken
	case err != nil:
		return "", "", fmt.Errorf("consume session: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(digest(provided))) != 1 {
		return "", "", ErrInvalidRefreshToken
	}

	accessID := NewAccessID()
	token, err := m.Generate(ctx, accessID)
	if err != nil {
		return "", "", err
	}
	return accessID, token, nil
}

// Revoke ends the session of accessID. Revoking twice is harmless.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	key, err := m.key(accessID)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

// HasSession reports whether accessID still has a live refresh session.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	key, err := m.key(accessID)
	if err != nil {
		return false, err
	}
	return m.store.Exists(ctx, key)
}

// NewAccessID mints the identifier used as both JWT jti and session key.
func NewAccessID() string {
	return uuid.NewString()
}

func newRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
