/*
Package db provides the PostgreSQL-backed identity directory.

It owns the pgx connection pool, applies the embedded goose migrations on startup,
and implements user.Directory on top of the users table.
*/
package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"rwchat/internal/pkg/logx"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// PoolOptions sizes the connection pool. The directory only sees login, signup and
// rename traffic, so the defaults are small.
type PoolOptions struct {
	MaxConns       int32
	MinConns       int32
	ConnectTimeout time.Duration
}

// DefaultPoolOptions is used by Open when no options are given.
var DefaultPoolOptions = PoolOptions{
	MaxConns:       10,
	MinConns:       1,
	ConnectTimeout: 15 * time.Second,
}

// Open connects to PostgreSQL, applies pending migrations and returns the pool.
func Open(ctx context.Context, dsn string, opts PoolOptions) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}

	config.MaxConns = opts.MaxConns
	config.MinConns = opts.MinConns
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// migrate applies the embedded migrations through a goose provider bound to the pool's config.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	sqlDB := stdlib.OpenDB(*pool.Config().ConnConfig)
	defer sqlDB.Close()

	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	for _, r := range results {
		logx.Info("Migration applied", "version", r.Source.Version, "duration", r.Duration.String())
	}

	logx.Info("Identity directory schema is up to date.", "applied", len(results))
	return nil
}
