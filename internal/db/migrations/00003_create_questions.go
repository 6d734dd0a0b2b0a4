package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateQuestions, downCreateQuestions)
}

func upCreateQuestions(ctx context.Context, tx *sql.Tx) error {
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
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS questions (
    id          VARCHAR(36) PRIMARY KEY,
    owner_id    VARCHAR(36),
    prompt      TEXT NOT NULL,
    explanation TEXT NOT NULL,
    is_system   BOOLEAN NOT NULL,
    created_at  %s NOT NULL,
    updated_at  %s NOT NULL
)`, timestampType, timestampType),
		`CREATE TABLE IF NOT EXISTS choices (
    id          VARCHAR(36) PRIMARY KEY,
    question_id VARCHAR(36) NOT NULL,
    label       TEXT NOT NULL,
    ordinal     INTEGER NOT NULL,
    is_correct  BOOLEAN NOT NULL,
    CONSTRAINT choices_question_fk FOREIGN KEY (question_id) REFERENCES questions (id) ON DELETE CASCADE
)`,
		`CREATE INDEX IF NOT EXISTS questions_owner_idx ON questions (owner_id)`,
		`CREATE INDEX IF NOT EXISTS choices_question_idx ON choices (question_id)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create questions schema: %w", err)
		}
	}
	return nil
}

func downCreateQuestions(ctx context.Context, tx *sql.Tx) error {
	for _, stmt := range []string{
		`DROP TABLE IF EXISTS choices`,
		`DROP TABLE IF EXISTS questions`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
