package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// DB wraps the connection with dialect-aware query helpers.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// DialectFor maps a configured database type to its dialect.
func DialectFor(dbType string) (Dialect, error) {
	switch strings.ToLower(dbType) {
	case "postgres", "postgresql":
		return NewPostgresDialect(), nil
	case "sqlite", "sqlite3", "":
		return NewSQLiteDialect(), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// preparer is implemented by dialects that need local setup before connecting.
type preparer interface {
	Prepare(cfg DialectConfig) error
}

// Open connects, pings and configures the database.
func Open(ctx context.Context, dbType string, cfg DialectConfig) (*DB, error) {
	dialect, err := DialectFor(dbType)
	if err != nil {
		return nil, err
	}
	if p, ok := dialect.(preparer); ok {
		if err := p.Prepare(cfg); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(dialect.DriverName(), dialect.DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := dialect.ConfigureConnection(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure connection: %w", err)
	}

	return &DB{DB: db, Dialect: dialect}, nil
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.DB.QueryRowContext(ctx, db.Dialect.RewriteQuery(query), args...)
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.DB.QueryContext(ctx, db.Dialect.RewriteQuery(query), args...)
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.DB.ExecContext(ctx, db.Dialect.RewriteQuery(query), args...)
}

// Migrate applies (up=true) or rolls back every migration found under
// dir/<dialect name>. It reports whether anything changed.
func (db *DB) Migrate(dir string, up bool) (bool, error) {
	driver, err := db.Dialect.MigrationDriver(db.DB)
	if err != nil {
		return false, fmt.Errorf("migration driver: %w", err)
	}

	source := "file://" + filepath.ToSlash(filepath.Join(dir, db.Dialect.Name()))
	m, err := migrate.NewWithDatabaseInstance(source, db.Dialect.Name(), driver)
	if err != nil {
		return false, fmt.Errorf("migration init failed: %w", err)
	}

	if up {
		err = m.Up()
	} else {
		err = m.Down()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("migration failed: %w", err)
	}
	return true, nil
}
