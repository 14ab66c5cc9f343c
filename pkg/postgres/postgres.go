// Package postgres opens the pgx pool and applies schema migrations.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dwikikusuma/foodstore/pkg/retry"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
)

// connectPolicy gives a starting database about half a minute.
var connectPolicy = retry.Policy{
	MaxRetries: 6,
	Backoff:    retry.NewBackoff(500*time.Millisecond, 8*time.Second, true),
}

// NewPool connects to dsn, retrying until the server answers a ping.
func NewPool(ctx context.Context, dsn string, log *slog.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := retry.Do(ctx, connectPolicy, func() error {
		p, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	}, func(err error, attempt int, wait time.Duration) {
		log.Warn("postgres not ready",
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.Any("err", err),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	log.Info("connected to postgres")
	return pool, nil
}

// Migrate applies every pending migration under sourceURL, e.g.
// "file://./migrations". An up-to-date schema is not an error.
func Migrate(sourceURL, dsn string, log *slog.Logger) error {
	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("schema up to date")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	log.Info("migrations applied")
	return nil
}
