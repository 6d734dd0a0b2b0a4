package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateAttempts, downCreateAttempts)
}

func upCreateAttempts(ctx context.Context, tx *sql.Tx) error {
	var timestampType string
	switch dialect {
	case "postgres":
		timestampType = "TIMESTAMPTZ"
	case "mysql":
		timestampType = "TIMESTAMP(6)"
	default: // sqlite3
		timestampType = "TIMESTAMP"
	}

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS attempts (
    id                 VARCHAR(36) PRIMARY KEY,
    user_id            VARCHAR(36) NOT NULL,
    question_id        VARCHAR(36) NOT NULL,
    question_prompt    TEXT NOT NULL,
    selected_choice_id VARCHAR(36) NOT NULL,
    is_correct         BOOLEAN NOT NULL,
    answered_at        %s NOT NULL
)`, timestampType),
		`CREATE INDEX IF NOT EXISTS attempts_user_idx ON attempts (user_id, answered_at)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create attempts schema: %w", err)
		}
	}
	return nil
}

func downCreateAttempts(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS attempts`)
	return err
}
