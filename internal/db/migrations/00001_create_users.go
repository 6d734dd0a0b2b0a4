package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateUsers, downCreateUsers)
}

func upCreateUsers(ctx context.Context, tx *sql.Tx) error {
	var timestampType string
	switch dialect {
	case "postgres":
		timestampType = "TIMESTAMPTZ"
	case "mysql":
		timestampType = "TIMESTAMP(6)"
	default: // sqlite3
		timestampType = "TIMESTAMP"
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
    id         VARCHAR(36) PRIMARY KEY,
    issuer     VARCHAR(255) NOT NULL,
    subject    VARCHAR(255) NOT NULL,
    created_at %s NOT NULL,
    updated_at %s NOT NULL,
    CONSTRAINT users_issuer_subject_uq UNIQUE (issuer, subject)
)`, timestampType, timestampType)

	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func downCreateUsers(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS users`)
	return err
}
