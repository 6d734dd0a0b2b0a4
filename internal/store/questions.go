package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Choice is one of a question's four options. Ordinal is 1-based and fixed at
// creation time.
type Choice struct {
	ID      string `db:"id"`
	Label   string `db:"label"`
	Ordinal int    `db:"ordinal"`
}

// Question is the quiz-facing view: no correct-answer marker.
type Question struct {
	ID          string
	Prompt      string
	Choices     []Choice
	Explanation string
}

// QuestionDetail is the author-facing view used by the edit form.
type QuestionDetail struct {
	ID              string
	Prompt          string
	Choices         []Choice
	CorrectChoiceID string
	Explanation     string
	UpdatedAt       time.Time
}

// QuestionSummary is the minimal listing row for the profile page.
type QuestionSummary struct {
	ID        string    `db:"id"`
	Prompt    string    `db:"prompt"`
	UpdatedAt time.Time `db:"updated_at"`
}

// QuestionDraft is the authoring input, shared by create and update.
type QuestionDraft struct {
	Prompt         string
	Choices        []string
	CorrectOrdinal int
	Explanation    string
}

type QuestionStore struct {
	db *sqlx.DB
}

func NewQuestionStore(db *sqlx.DB) *QuestionStore {
	return &QuestionStore{db: db}
}

// Create validates the draft and inserts the question with its four choices
// in one transaction. Returns the new question id.
func (s *QuestionStore) Create(ctx context.Context, ownerID string, draft QuestionDraft) (string, error) {
	if err := ValidateDraft(draft); err != nil {
		return "", err
	}

	questionID := uuid.New().String()
	now := time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO questions (id, owner_id, prompt, explanation, is_system, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), questionID, ownerID, draft.Prompt, draft.Explanation, false, now, now)
	if err != nil {
		return "", err
	}

	if err := insertChoices(ctx, tx, questionID, draft); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return questionID, nil
}

// Update rewrites prompt, explanation, and all four choices. Only the owner
// may update; system questions have no owner and are immutable.
func (s *QuestionStore) Update(ctx context.Context, id, ownerID string, draft QuestionDraft) error {
	if err := ValidateDraft(draft); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var dbOwner sql.NullString
	err = tx.GetContext(ctx, &dbOwner, tx.Rebind(`SELECT owner_id FROM questions WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if !dbOwner.Valid || dbOwner.String != ownerID {
		return ErrForbidden
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		UPDATE questions SET prompt = ?, explanation = ?, updated_at = ? WHERE id = ?
	`), draft.Prompt, draft.Explanation, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	// Choices are replaced wholesale; attempts keep a prompt snapshot so
	// history stays readable after edits.
	_, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM choices WHERE question_id = ?`), id)
	if err != nil {
		return err
	}
	if err := insertChoices(ctx, tx, id, draft); err != nil {
		return err
	}

	return tx.Commit()
}

func insertChoices(ctx context.Context, tx *sqlx.Tx, questionID string, draft QuestionDraft) error {
	for i, label := range draft.Choices {
		_, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO choices (id, question_id, label, ordinal, is_correct)
			VALUES (?, ?, ?, ?, ?)
		`), uuid.New().String(), questionID, label, i+1, i+1 == draft.CorrectOrdinal)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetQuizQuestion loads the quiz-facing view (choices ordered by ordinal,
// correct-answer marker withheld).
func (s *QuestionStore) GetQuizQuestion(ctx context.Context, id string) (*Question, error) {
	var row struct {
		ID          string `db:"id"`
		Prompt      string `db:"prompt"`
		Explanation string `db:"explanation"`
	}
	err := s.db.GetContext(ctx, &row, s.db.Rebind(
		`SELECT id, prompt, explanation FROM questions WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	choices, err := s.listChoices(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Question{ID: row.ID, Prompt: row.Prompt, Choices: choices, Explanation: row.Explanation}, nil
}

// GetDetail loads the author-facing view, including which choice is correct.
func (s *QuestionStore) GetDetail(ctx context.Context, id string) (*QuestionDetail, error) {
	var row struct {
		ID          string    `db:"id"`
		Prompt      string    `db:"prompt"`
		Explanation string    `db:"explanation"`
		UpdatedAt   time.Time `db:"updated_at"`
	}
	err := s.db.GetContext(ctx, &row, s.db.Rebind(
		`SELECT id, prompt, explanation, updated_at FROM questions WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	choices, err := s.listChoices(ctx, id)
	if err != nil {
		return nil, err
	}

	var correctID string
	err = s.db.GetContext(ctx, &correctID, s.db.Rebind(
		`SELECT id FROM choices WHERE question_id = ? AND is_correct`), id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	return &QuestionDetail{
		ID:              row.ID,
		Prompt:          row.Prompt,
		Choices:         choices,
		CorrectChoiceID: correctID,
		Explanation:     row.Explanation,
		UpdatedAt:       row.UpdatedAt,
	}, nil
}

func (s *QuestionStore) listChoices(ctx context.Context, questionID string) ([]Choice, error) {
	var choices []Choice
	err := s.db.SelectContext(ctx, &choices, s.db.Rebind(
		`SELECT id, label, ordinal FROM choices WHERE question_id = ? ORDER BY ordinal ASC`), questionID)
	if err != nil {
		return nil, err
	}
	return choices, nil
}

// GetOwnerID returns the question's owner id, or ErrNotFound. System
// questions report an empty owner.
func (s *QuestionStore) GetOwnerID(ctx context.Context, id string) (string, error) {
	var owner sql.NullString
	err := s.db.GetContext(ctx, &owner, s.db.Rebind(`SELECT owner_id FROM questions WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return owner.String, nil
}

// GetCorrectChoiceID returns the id of the question's correct choice.
func (s *QuestionStore) GetCorrectChoiceID(ctx context.Context, questionID string) (string, error) {
	var id string
	err := s.db.GetContext(ctx, &id, s.db.Rebind(
		`SELECT id FROM choices WHERE question_id = ? AND is_correct`), questionID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// ChoiceBelongsTo reports whether choiceID is one of questionID's options.
func (s *QuestionStore) ChoiceBelongsTo(ctx context.Context, questionID, choiceID string) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.db.Rebind(
		`SELECT COUNT(*) FROM choices WHERE question_id = ? AND id = ?`), questionID, choiceID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListCandidateIDs returns every question id eligible for the quiz, excluding
// excludeID (the previously served question). User-authored questions win
// over the seeded system set: as soon as one exists, the pool is all
// questions; until then, only system ones.
func (s *QuestionStore) ListCandidateIDs(ctx context.Context, excludeID string) ([]string, error) {
	var userAuthored int
	err := s.db.GetContext(ctx, &userAuthored, `SELECT COUNT(*) FROM questions WHERE NOT is_system`)
	if err != nil {
		return nil, err
	}

	query := `SELECT id FROM questions`
	if userAuthored == 0 {
		query += ` WHERE is_system`
	}
	query += ` ORDER BY id ASC`

	var ids []string
	if err := s.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, err
	}

	if excludeID == "" {
		return ids, nil
	}
	filtered := ids[:0]
	for _, id := range ids {
		if id != excludeID {
			filtered = append(filtered, id)
		}
	}
	return filtered, nil
}

// ListByOwner returns the user's own questions, most recently updated first.
func (s *QuestionStore) ListByOwner(ctx context.Context, ownerID string) ([]QuestionSummary, error) {
	var rows []QuestionSummary
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT id, prompt, updated_at FROM questions
		WHERE owner_id = ? ORDER BY updated_at DESC, id ASC
	`), ownerID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the total number of questions, for the gauge metric.
func (s *QuestionStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM questions`); err != nil {
		return 0, err
	}
	return n, nil
}
