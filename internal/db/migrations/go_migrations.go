// Package migrations contains dialect-aware Go database migrations. Go
// migrations are used instead of SQL files because the DDL differs per
// database driver (SQLite/PostgreSQL/MySQL column types).
package migrations

// dialect is set by the parent db package before migrations are applied.
var dialect string

// SetDialect configures the SQL dialect for Go migrations.
// Must be called before goose.Up. Valid values: "sqlite3", "postgres", "mysql".
func SetDialect(d string) {
	dialect = d
}
