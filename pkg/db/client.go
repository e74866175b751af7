package db

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const maxTxAttempts = 3

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Transactor runs fn inside a database transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Client owns the GORM connection pool. It is built once by the binary and
// injected into repositories; there is no package-level connection.
type Client struct {
	conn     *gorm.DB
	attempts int
}

// NewFromGorm adopts an already opened connection, used by tests.
func NewFromGorm(conn *gorm.DB) *Client {
	return &Client{conn: conn, attempts: maxTxAttempts}
}

// New opens the Postgres pool described by cfg. Slow statements and driver
// errors are reported through logg.
func New(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	conn, err := gorm.Open(
		postgres.New(postgres.Config{DSN: cfg.DSN, PreferSimpleProtocol: true}),
		&gorm.Config{
			Logger:                 newQueryLogger(logg, cfg.SlowQueryThreshold),
			SkipDefaultTransaction: true,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("opening db connection: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}
	setIfPositive(cfg.MaxOpenConns, sqlDB.SetMaxOpenConns)
	setIfPositive(cfg.MaxIdleConns, sqlDB.SetMaxIdleConns)
	setIfPositive(cfg.ConnMaxLifetime, sqlDB.SetConnMaxLifetime)
	setIfPositive(cfg.ConnMaxIdleTime, sqlDB.SetConnMaxIdleTime)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("pinging db: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"max_open_conns": cfg.MaxOpenConns,
			"max_idle_conns": cfg.MaxIdleConns,
		}), "db.connected")
	}

	return &Client{conn: conn, attempts: maxTxAttempts}, nil
}

func setIfPositive[T int | time.Duration](v T, apply func(T)) {
	if v > 0 {
		apply(v)
	}
}

// DB returns the underlying GORM connection.
func (c *Client) DB() *gorm.DB {
	return c.conn
}

// Ping verifies the datasource is reachable.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close shuts down the pooled connections.
func (c *Client) Close() error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx runs fn in a transaction, rolling back on error or panic. Whole
// transactions that fail with a serialization failure or deadlock are
// replayed, so fn must not keep side effects outside tx.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		err = c.conn.WithContext(ctx).Transaction(fn)
		if err == nil || !IsTransient(err) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}
