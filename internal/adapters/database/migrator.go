package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

type migrator struct {
	db     *sqlx.DB
	logger *slog.Logger
	tracer trace.Tracer
}

func NewDatabaseMigrator(db *sqlx.DB, logger *slog.Logger) *migrator {
	return &migrator{
		db:     db,
		logger: logger,
		tracer: otel.Tracer("riftlight/database/migrator"),
	}
}

// Migrate creates schemaName if needed and applies every pending embedded migration to it
func (m *migrator) Migrate(ctx context.Context, schemaName string) error {
	ctx, span := m.tracer.Start(ctx, "migrator.Migrate", trace.WithAttributes(attribute.String("schema", schemaName)))
	defer span.End()

	err := m.migrate(ctx, schemaName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "migration failed")
		return err
	}
	return nil
}

func (m *migrator) migrate(ctx context.Context, schemaName string) error {
	conn, err := m.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("migrate: failed to connect to db: %w", err)
	}
	defer conn.Close()

	instance, err := newMigrateInstance(ctx, conn, schemaName)
	if err != nil {
		return err
	}
	defer instance.Close()

	fromVersion, _, err := instance.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migrate: failed to get current version: %w", err)
	}

	start := time.Now()
	m.logger.InfoContext(ctx, "Starting migrations", "schema", schemaName, "fromVersion", fromVersion)

	err = instance.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		m.logger.InfoContext(ctx, "No migrations to run", "schema", schemaName)
	case err != nil:
		return fmt.Errorf("migrate: failed to migrate: %w", err)
	}

	version, dirty, err := instance.Version()
	if err != nil {
		return fmt.Errorf("migrate: failed to get migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("migrate: schema %s is dirty at version %d", schemaName, version)
	}

	m.logger.InfoContext(
		ctx,
		"Migrations completed",
		"schema", schemaName,
		"fromVersion", fromVersion,
		"version", version,
		"duration", time.Since(start).String(),
	)

	return nil
}

// newMigrateInstance creates schemaName on conn and returns a migrate instance for it.
// Closing the instance closes conn.
func newMigrateInstance(ctx context.Context, conn *sql.Conn, schemaName string) (*migrate.Migrate, error) {
	_, err := conn.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pq.QuoteIdentifier(schemaName)))
	if err != nil {
		return nil, fmt.Errorf("migrate: failed to create schema: %w", err)
	}

	_, err = conn.ExecContext(ctx, fmt.Sprintf("SET search_path TO %s", pq.QuoteIdentifier(schemaName)))
	if err != nil {
		return nil, fmt.Errorf("migrate: failed to set search path: %w", err)
	}

	migrationSource, err := iofs.New(embeddedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migrate: failed to create driver from embedded migrations: %w", err)
	}

	dbDriver, err := postgres.WithConnection(ctx, conn, &postgres.Config{
		DatabaseName: DB_NAME,
		SchemaName:   schemaName,
	})
	if err != nil {
		migrationSource.Close()
		return nil, fmt.Errorf("migrate: failed to create postgres driver: %w", err)
	}

	instance, err := migrate.NewWithInstance("iofs", migrationSource, "postgres", dbDriver)
	if err != nil {
		migrationSource.Close()
		dbDriver.Close()
		return nil, fmt.Errorf("migrate: failed to create migration instance: %w", err)
	}

	return instance, nil
}
