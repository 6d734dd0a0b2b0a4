package migrations

// Seeds the built-in question set so a fresh install can serve a quiz before
// anyone has authored a question. Rows use fixed UUIDs so the down migration
// can remove exactly what was seeded.

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upSeedSystemQuestions, downSeedSystemQuestions)
}

type seedQuestion struct {
	id          string
	prompt      string
	explanation string
	choices     [4]string
	correct     int // 1-based ordinal
	choiceIDs   [4]string
}

var systemQuestions = []seedQuestion{
	{
		id:          "6fa1f3fc-0c3b-4a40-9e05-4fb7a51d1a01",
		prompt:      "In which year did the Western Roman Empire fall?",
		explanation: "Odoacer deposed Romulus Augustulus in 476 CE, the conventional end date of the Western Roman Empire.",
		choices:     [4]string{"476 CE", "1066 CE", "1453 CE", "800 CE"},
		correct:     1,
		choiceIDs: [4]string{
			"0d1a2b3c-0001-4000-8000-000000000001",
			"0d1a2b3c-0001-4000-8000-000000000002",
			"0d1a2b3c-0001-4000-8000-000000000003",
			"0d1a2b3c-0001-4000-8000-000000000004",
		},
	},
	{
		id:          "6fa1f3fc-0c3b-4a40-9e05-4fb7a51d1a02",
		prompt:      "Which dynasty built the majority of the Great Wall of China visible today?",
		explanation: "Most surviving brick-and-stone sections date from the Ming dynasty (1368-1644).",
		choices:     [4]string{"Qin", "Han", "Ming", "Tang"},
		correct:     3,
		choiceIDs: [4]string{
			"0d1a2b3c-0002-4000-8000-000000000001",
			"0d1a2b3c-0002-4000-8000-000000000002",
			"0d1a2b3c-0002-4000-8000-000000000003",
			"0d1a2b3c-0002-4000-8000-000000000004",
		},
	},
	{
		id:          "6fa1f3fc-0c3b-4a40-9e05-4fb7a51d1a03",
		prompt:      "Who was the first President of the United States?",
		explanation: "George Washington served two terms from 1789 to 1797.",
		choices:     [4]string{"Thomas Jefferson", "George Washington", "John Adams", "Benjamin Franklin"},
		correct:     2,
		choiceIDs: [4]string{
			"0d1a2b3c-0003-4000-8000-000000000001",
			"0d1a2b3c-0003-4000-8000-000000000002",
			"0d1a2b3c-0003-4000-8000-000000000003",
			"0d1a2b3c-0003-4000-8000-000000000004",
		},
	},
	{
		id:          "6fa1f3fc-0c3b-4a40-9e05-4fb7a51d1a04",
		prompt:      "The Meiji Restoration returned political power to the emperor of which country?",
		explanation: "The 1868 Meiji Restoration ended the Tokugawa shogunate and restored imperial rule in Japan.",
		choices:     [4]string{"Korea", "China", "Vietnam", "Japan"},
		correct:     4,
		choiceIDs: [4]string{
			"0d1a2b3c-0004-4000-8000-000000000001",
			"0d1a2b3c-0004-4000-8000-000000000002",
			"0d1a2b3c-0004-4000-8000-000000000003",
			"0d1a2b3c-0004-4000-8000-000000000004",
		},
	},
	{
		id:          "6fa1f3fc-0c3b-4a40-9e05-4fb7a51d1a05",
		prompt:      "Which event is generally taken to mark the start of World War I?",
		explanation: "The assassination of Archduke Franz Ferdinand in Sarajevo in June 1914 triggered the July Crisis and the war.",
		choices:     [4]string{"The sinking of the Lusitania", "The assassination of Franz Ferdinand", "The invasion of Poland", "The Zimmermann Telegram"},
		correct:     2,
		choiceIDs: [4]string{
			"0d1a2b3c-0005-4000-8000-000000000001",
			"0d1a2b3c-0005-4000-8000-000000000002",
			"0d1a2b3c-0005-4000-8000-000000000003",
			"0d1a2b3c-0005-4000-8000-000000000004",
		},
	},
}

func upSeedSystemQuestions(ctx context.Context, tx *sql.Tx) error {
	// Placeholder syntax differs per driver, so the statements are built as
	// literals. quoteSQL doubles single quotes.
	for _, q := range systemQuestions {
		stmt := fmt.Sprintf(
			`INSERT INTO questions (id, owner_id, prompt, explanation, is_system, created_at, updated_at)
			 VALUES ('%s', NULL, '%s', '%s', TRUE, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
			q.id, quoteSQL(q.prompt), quoteSQL(q.explanation))
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("seed question %s: %w", q.id, err)
		}
		for i, label := range q.choices {
			correct := "FALSE"
			if i+1 == q.correct {
				correct = "TRUE"
			}
			stmt := fmt.Sprintf(
				`INSERT INTO choices (id, question_id, label, ordinal, is_correct)
				 VALUES ('%s', '%s', '%s', %d, %s)`,
				q.choiceIDs[i], q.id, quoteSQL(label), i+1, correct)
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("seed choice %s: %w", q.choiceIDs[i], err)
			}
		}
	}
	return nil
}

func downSeedSystemQuestions(ctx context.Context, tx *sql.Tx) error {
	for _, q := range systemQuestions {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM choices WHERE question_id = '%s'`, q.id)); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM questions WHERE id = '%s'`, q.id)); err != nil {
			return err
		}
	}
	return nil
}

func quoteSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
