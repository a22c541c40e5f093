// Package pgtest starts a migrated PostgreSQL container for integration and end-to-end tests.
package pgtest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/farmstore/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	dbName     = "farmstore_db"
	dbUser     = "user"
	dbPassword = "password"
)

type Database struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// Start runs a PostgreSQL container, applies the embedded migrations and opens a pool.
func Start(ctx context.Context, logger *slog.Logger) (*Database, error) {
	// 1. Start a PostgreSQL container. Wait for the container to be ready.
	container, err := postgres.Run(ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to run PostgreSQL container: %w", err)
	}
	d := &Database{Container: container}

	// 2. Get the connection string from the container
	d.ConnStr, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		d.Close(ctx, logger)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	// 3. Create the pool and ping until the database answers
	d.Pool, err = pgxpool.New(ctx, d.ConnStr)
	if err != nil {
		d.Close(ctx, logger)
		return nil, fmt.Errorf("failed to create pgxpool: %w", err)
	}
	for i := range 10 {
		logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		if err = d.Pool.Ping(ctx); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		d.Close(ctx, logger)
		return nil, fmt.Errorf("failed to connect to PostgreSQL after retries: %w", err)
	}

	// 4. Database migration
	if err := migrations.Up(d.ConnStr); err != nil {
		d.Close(ctx, logger)
		return nil, err
	}
	logger.Info("Migrations applied")
	return d, nil
}

// Truncate empties every table.
func (d *Database) Truncate(ctx context.Context) error {
	_, err := d.Pool.Exec(ctx, "TRUNCATE TABLE sale_items, sales, products, customers, suppliers")
	return err
}

// Close closes the pool and terminates the container.
func (d *Database) Close(ctx context.Context, logger *slog.Logger) {
	if d.Pool != nil {
		d.Pool.Close()
		logger.Info("DB pool closed.")
	}
	if d.Container != nil {
		if err := d.Container.Terminate(ctx); err != nil {
			logger.Warn("failed to terminate PostgreSQL container", "error", err)
		} else {
			logger.Info("PostgreSQL container terminated.")
		}
	}
}
