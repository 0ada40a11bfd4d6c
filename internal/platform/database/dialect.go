package database

import (
	"database/sql"
	"regexp"
	"strconv"

	migratedb "github.com/golang-migrate/migrate/v4/database"
)

// Dialect hides the differences between the supported SQL engines.
type Dialect interface {
	// Name identifies the dialect in logs and migration source paths.
	Name() string

	// DriverName returns the driver name for sql.Open
	DriverName() string

	DSN(config DialectConfig) string

	// RewriteQuery converts ? placeholders to the engine's syntax.
	RewriteQuery(query string) string

	ConfigureConnection(db *sql.DB) error

	// MigrationDriver wraps an open connection for golang-migrate.
	MigrationDriver(db *sql.DB) (migratedb.Driver, error)
}

type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL
	URL string
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}
