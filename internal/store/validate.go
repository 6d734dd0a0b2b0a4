package store

import (
	"fmt"
	"strings"
)

// choiceCount is fixed: every question has exactly four options.
const choiceCount = 4

// maxPromptLength keeps a single form post from ballooning a quiz page.
const maxPromptLength = 2000

// ValidateDraft checks a question draft before it touches the database.
// Failures wrap ErrInvalidDraft with the offending field.
func ValidateDraft(draft QuestionDraft) error {
	if strings.TrimSpace(draft.Prompt) == "" {
		return fmt.Errorf("%w: prompt is required", ErrInvalidDraft)
	}
	if len(draft.Prompt) > maxPromptLength {
		return fmt.Errorf("%w: prompt exceeds %d characters", ErrInvalidDraft, maxPromptLength)
	}
	if len(draft.Choices) != choiceCount {
		return fmt.Errorf("%w: exactly %d choices are required", ErrInvalidDraft, choiceCount)
	}
	for i, label := range draft.Choices {
		if strings.TrimSpace(label) == "" {
			return fmt.Errorf("%w: choice %d is empty", ErrInvalidDraft, i+1)
		}
	}
	if draft.CorrectOrdinal < 1 || draft.CorrectOrdinal > choiceCount {
		return fmt.Errorf("%w: correct choice must be between 1 and %d", ErrInvalidDraft, choiceCount)
	}
	return nil
}
