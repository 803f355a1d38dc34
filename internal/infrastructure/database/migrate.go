package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrator runs the embedded schema migrations for the connected dialect.
type Migrator struct {
	m *migrate.Migrate
}

// NewMigrator builds a migrator bound to db. The returned migrator borrows the
// connection; closing db remains the caller's job.
func NewMigrator(db *DB) (*Migrator, error) {
	src, err := iofs.New(migrationsFS, "migrations/"+db.driver)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s migrations: %w", db.driver, err)
	}

	var driver migratedb.Driver
	switch db.driver {
	case DriverSQLite:
		driver, err = migratesqlite.WithInstance(db.DB.DB, &migratesqlite.Config{})
	case DriverPostgres:
		driver, err = migratepg.WithInstance(db.DB.DB, &migratepg.Config{})
	default:
		err = fmt.Errorf("unsupported driver %q", db.driver)
	}
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, db.driver, driver)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return &Migrator{m: m}, nil
}

// Up applies all pending migrations.
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Down rolls back every applied migration.
func (mg *Migrator) Down() error {
	if err := mg.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	return nil
}

// Version reports the current schema version. A fresh database reports 0.
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, dirty, nil
}

// Migrate applies all pending migrations to db.
func Migrate(db *DB) error {
	mg, err := NewMigrator(db)
	if err != nil {
		return err
	}
	return mg.Up()
}
