package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/chrisdamba/foodpredict/internal/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"

	maxTxRetries = 3
)

// Connect opens a pool against cfg.DSN and pings it.
func Connect(ctx context.Context, cfg models.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("error parsing database dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	return pool, nil
}

// NewRepositories wires every repository to pool. Calendar dates read back
// from the database are placed at midnight in loc.
func NewRepositories(pool *pgxpool.Pool, loc *time.Location) repositories.Repositories {
	if loc == nil {
		loc = time.UTC
	}
	return repositories.Repositories{
		Orders:      NewOrderRepository(pool),
		Users:       NewUserRepository(pool),
		Restaurants: NewRestaurantRepository(pool),
		MenuItems:   NewMenuItemRepository(pool),
		Profiles:    NewBehaviorProfileRepository(pool),
		Patterns:    NewPatternRepository(pool),
		Suggestions: NewSuggestionRepository(pool),
		Forecasts:   NewForecastRepository(pool, loc),
		Schedules:   NewScheduleRepository(pool, loc),
		Reports:     NewReportRepository(pool, loc),
	}
}

// execTx runs fn in a transaction, retrying serialization failures and deadlocks.
func execTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = runTx(ctx, pool, fn)
		if err == nil || !isRetryableError(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 100 * time.Millisecond):
		}
	}
	return fmt.Errorf("failed after %d retries: %w", maxTxRetries, err)
}

func runTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isRetryableError(err error) bool {
	switch pgErrorCode(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == codeUniqueViolation
}

// limitArg maps a non-positive limit to NULL, which LIMIT treats as unbounded.
func limitArg(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}

func dateIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
