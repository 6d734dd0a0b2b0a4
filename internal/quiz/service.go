// Package quiz holds the question-serving and answer-judging rules, keeping
// handlers to form decoding and rendering.
package quiz

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/history-quiz/historyquiz/internal/metrics"
	"github.com/history-quiz/historyquiz/internal/store"
)

// ErrNoQuestions is returned when the database holds nothing to serve.
// Migrations seed a system question set, so this indicates a broken install.
var ErrNoQuestions = errors.New("no questions available")

// ErrBadAnswer is returned for malformed or mismatched answer submissions.
var ErrBadAnswer = errors.New("invalid answer submission")

type Service struct {
	questions *store.QuestionStore
	attempts  *store.AttemptStore
}

func NewService(qs *store.QuestionStore, as *store.AttemptStore) *Service {
	return &Service{questions: qs, attempts: as}
}

// NextQuestion picks the next question to serve, avoiding previousID when
// more than one candidate exists. The pick is derived from seed (the request
// id) rather than a global RNG, so a request is reproducible in tests.
func (s *Service) NextQuestion(ctx context.Context, seed, previousID string) (*store.Question, error) {
	ids, err := s.questions.ListCandidateIDs(ctx, previousID)
	if err != nil {
		return nil, err
	}
	// A single-question install: lift the exclusion rather than serve nothing.
	if len(ids) == 0 && previousID != "" {
		ids, err = s.questions.ListCandidateIDs(ctx, "")
		if err != nil {
			return nil, err
		}
	}
	if len(ids) == 0 {
		return nil, ErrNoQuestions
	}

	return s.questions.GetQuizQuestion(ctx, pickDeterministically(seed, ids))
}

// Question loads the quiz-facing view of one question.
func (s *Service) Question(ctx context.Context, id string) (*store.Question, error) {
	return s.questions.GetQuizQuestion(ctx, id)
}

// Result is the outcome of one judged answer.
type Result struct {
	IsCorrect       bool
	CorrectChoiceID string
}

// SubmitAnswer judges the selected choice and, when userID is non-empty,
// records the attempt. Anonymous players get a verdict but no history.
func (s *Service) SubmitAnswer(ctx context.Context, userID, questionID, choiceID string) (Result, error) {
	if questionID == "" || choiceID == "" {
		return Result{}, fmt.Errorf("%w: missing question or choice", ErrBadAnswer)
	}
	if _, err := uuid.Parse(questionID); err != nil {
		return Result{}, fmt.Errorf("%w: malformed question id", ErrBadAnswer)
	}
	if _, err := uuid.Parse(choiceID); err != nil {
		return Result{}, fmt.Errorf("%w: malformed choice id", ErrBadAnswer)
	}

	belongs, err := s.questions.ChoiceBelongsTo(ctx, questionID, choiceID)
	if err != nil {
		return Result{}, err
	}
	if !belongs {
		return Result{}, fmt.Errorf("%w: choice does not belong to question", ErrBadAnswer)
	}

	correctID, err := s.questions.GetCorrectChoiceID(ctx, questionID)
	if err != nil {
		return Result{}, err
	}

	result := Result{IsCorrect: choiceID == correctID, CorrectChoiceID: correctID}

	if userID != "" {
		question, err := s.questions.GetQuizQuestion(ctx, questionID)
		if err != nil {
			return Result{}, err
		}
		if _, err := s.attempts.Record(ctx, userID, questionID, question.Prompt, choiceID, result.IsCorrect); err != nil {
			return Result{}, err
		}
	}

	if result.IsCorrect {
		metrics.AnswersTotal.WithLabelValues("correct").Inc()
	} else {
		metrics.AnswersTotal.WithLabelValues("incorrect").Inc()
	}
	return result, nil
}

// pickDeterministically maps seed onto one of ids (which are already in a
// stable order).
func pickDeterministically(seed string, ids []string) string {
	sum := sha256.Sum256([]byte(seed))
	index := binary.BigEndian.Uint64(sum[:8]) % uint64(len(ids))
	return ids[index]
}
