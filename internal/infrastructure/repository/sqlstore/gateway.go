package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Gateway keeps engine blobs in a single key/value table, on sqlite for local
// durable storage or postgres when the host already runs one. Connections are
// instrumented; the schema is migrated on open.
type Gateway struct {
	db  *sqlx.DB
	now func() time.Time
}

func Open(ctx context.Context, driver, dsn string) (*Gateway, error) {
	driver = strings.TrimSpace(driver)
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("storage dsn is required")
	}

	db, err := otelsqlx.Open(driver, dsn,
		otelsql.WithAttributes(attribute.String("db.system", driver)),
	)
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping storage db: %w", err)
	}

	if err := migrateSchema(db, driver); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Gateway{db: db, now: time.Now}, nil
}

func (g *Gateway) Load(ctx context.Context, key string) ([]byte, bool, error) {
	query := g.db.Rebind(`SELECT blob FROM engine_state WHERE state_key = ?`)

	var blob []byte
	if err := g.db.GetContext(ctx, &blob, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load blob %s: %w", key, err)
	}
	return blob, true, nil
}

func (g *Gateway) Save(ctx context.Context, key string, blob []byte) error {
	query := g.db.Rebind(`
		INSERT INTO engine_state (state_key, blob, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (state_key) DO UPDATE SET
			blob = excluded.blob,
			updated_at = excluded.updated_at`)

	// Blobs are JSON text; bind as string so both drivers store TEXT.
	if _, err := g.db.ExecContext(ctx, query, key, string(blob), g.now().UTC()); err != nil {
		return fmt.Errorf("save blob %s: %w", key, err)
	}
	return nil
}

func (g *Gateway) Close() error {
	return g.db.Close()
}

func migrateSchema(db *sqlx.DB, driver string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	var target database.Driver
	switch driver {
	case DriverPostgres:
		target, err = migratepg.WithInstance(db.DB, &migratepg.Config{})
	case DriverSQLite:
		target, err = migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	}
	if err != nil {
		return fmt.Errorf("prepare migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, target)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
