package handler

import (
	"net/http"

	"github.com/history-quiz/historyquiz/internal/auth"
	"github.com/history-quiz/historyquiz/internal/store"
)

const attemptHistoryLimit = 20

// MePage is the template data for the profile page.
type MePage struct {
	BasePage
	Stats       store.Stats
	Attempts    []store.Attempt
	MyQuestions []store.QuestionSummary
}

// MeHandler renders the signed-in user's history, stats, and own questions.
type MeHandler struct {
	attempts  *store.AttemptStore
	questions *store.QuestionStore
	csrf      *auth.CSRF
}

func NewMeHandler(as *store.AttemptStore, qs *store.QuestionStore, csrf *auth.CSRF) *MeHandler {
	return &MeHandler{attempts: as, questions: qs, csrf: csrf}
}

// Show renders GET /me.
func (h *MeHandler) Show(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	stats, err := h.attempts.StatsFor(r.Context(), user.ID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	attempts, err := h.attempts.ListByUser(r.Context(), user.ID, attemptHistoryLimit)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	questions, err := h.questions.ListByOwner(r.Context(), user.ID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	token, err := h.csrf.Issue(r.Context())
	if err != nil {
		token = ""
	}

	render(w, "me.html", MePage{
		BasePage:    BasePage{User: user, CSRFToken: token},
		Stats:       stats,
		Attempts:    attempts,
		MyQuestions: questions,
	})
}
