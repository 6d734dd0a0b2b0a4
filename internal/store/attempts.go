package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Attempt is one answered question in a user's history. QuestionPrompt is a
// snapshot taken at answer time so later edits don't rewrite history.
type Attempt struct {
	ID               string    `db:"id"`
	UserID           string    `db:"user_id"`
	QuestionID       string    `db:"question_id"`
	QuestionPrompt   string    `db:"question_prompt"`
	SelectedChoiceID string    `db:"selected_choice_id"`
	IsCorrect        bool      `db:"is_correct"`
	AnsweredAt       time.Time `db:"answered_at"`
}

// Stats summarizes a user's history for the profile page.
type Stats struct {
	TotalAttempts   int64
	CorrectAttempts int64
	Accuracy        float64
}

type AttemptStore struct {
	db *sqlx.DB
}

func NewAttemptStore(db *sqlx.DB) *AttemptStore {
	return &AttemptStore{db: db}
}

// Record persists one judged answer.
func (s *AttemptStore) Record(ctx context.Context, userID, questionID, questionPrompt, selectedChoiceID string, isCorrect bool) (*Attempt, error) {
	a := &Attempt{
		ID:               uuid.New().String(),
		UserID:           userID,
		QuestionID:       questionID,
		QuestionPrompt:   questionPrompt,
		SelectedChoiceID: selectedChoiceID,
		IsCorrect:        isCorrect,
		AnsweredAt:       time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO attempts (id, user_id, question_id, question_prompt, selected_choice_id, is_correct, answered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), a.ID, a.UserID, a.QuestionID, a.QuestionPrompt, a.SelectedChoiceID, a.IsCorrect, a.AnsweredAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListByUser returns the user's latest attempts, newest first.
func (s *AttemptStore) ListByUser(ctx context.Context, userID string, limit int) ([]Attempt, error) {
	var attempts []Attempt
	err := s.db.SelectContext(ctx, &attempts, s.db.Rebind(`
		SELECT * FROM attempts WHERE user_id = ?
		ORDER BY answered_at DESC, id ASC LIMIT ?
	`), userID, limit)
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// StatsFor computes total/correct/accuracy over the user's whole history.
func (s *AttemptStore) StatsFor(ctx context.Context, userID string) (Stats, error) {
	var row struct {
		Total   int64 `db:"total"`
		Correct int64 `db:"correct"`
	}
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT COUNT(*) AS total, COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0) AS correct
		FROM attempts WHERE user_id = ?
	`), userID)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{TotalAttempts: row.Total, CorrectAttempts: row.Correct}
	if row.Total > 0 {
		stats.Accuracy = float64(row.Correct) / float64(row.Total)
	}
	return stats, nil
}
