package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/history-quiz/historyquiz/internal/auth"
	"github.com/history-quiz/historyquiz/internal/store"
)

// QuestionForm mirrors the authoring form fields, round-tripped on
// validation errors so the author's input isn't lost.
type QuestionForm struct {
	Prompt         string
	Choices        [4]string
	CorrectOrdinal int
	Explanation    string
}

// QuestionFormPage is the template data for the new/edit screens.
type QuestionFormPage struct {
	BasePage
	QuestionID string // empty on the create form
	Form       QuestionForm
	Error      string
}

// QuestionsHandler provides the authoring screens. All routes require auth.
type QuestionsHandler struct {
	questions *store.QuestionStore
	csrf      *auth.CSRF
}

func NewQuestionsHandler(qs *store.QuestionStore, csrf *auth.CSRF) *QuestionsHandler {
	return &QuestionsHandler{questions: qs, csrf: csrf}
}

// New renders the empty create form at GET /questions/new.
func (h *QuestionsHandler) New(w http.ResponseWriter, r *http.Request) {
	render(w, "question_form.html", QuestionFormPage{
		BasePage: h.basePage(r),
		Form:     QuestionForm{CorrectOrdinal: 1},
	})
}

// Create handles POST /questions.
func (h *QuestionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	form := parseQuestionForm(r)

	_, err := h.questions.Create(r.Context(), user.ID, form.draft())
	if err != nil {
		if errors.Is(err, store.ErrInvalidDraft) {
			w.WriteHeader(http.StatusBadRequest)
			render(w, "question_form.html", QuestionFormPage{
				BasePage: h.basePage(r),
				Form:     form,
				Error:    err.Error(),
			})
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/me", http.StatusFound)
}

// Edit renders the pre-filled edit form at GET /questions/{id}/edit.
// Only the owner may see it; system questions have no owner.
func (h *QuestionsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	detail, err := h.questions.GetDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	owner, err := h.questions.GetOwnerID(r.Context(), id)
	if err != nil || owner != user.ID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	form := QuestionForm{Prompt: detail.Prompt, Explanation: detail.Explanation}
	for i, c := range detail.Choices {
		if i < len(form.Choices) {
			form.Choices[i] = c.Label
		}
		if c.ID == detail.CorrectChoiceID {
			form.CorrectOrdinal = c.Ordinal
		}
	}

	render(w, "question_form.html", QuestionFormPage{
		BasePage:   h.basePage(r),
		QuestionID: id,
		Form:       form,
	})
}

// Update handles POST /questions/{id}.
func (h *QuestionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")
	form := parseQuestionForm(r)

	err := h.questions.Update(r.Context(), id, user.ID, form.draft())
	switch {
	case err == nil:
		http.Redirect(w, r, "/me", http.StatusFound)
	case errors.Is(err, store.ErrInvalidDraft):
		w.WriteHeader(http.StatusBadRequest)
		render(w, "question_form.html", QuestionFormPage{
			BasePage:   h.basePage(r),
			QuestionID: id,
			Form:       form,
			Error:      err.Error(),
		})
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, store.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *QuestionsHandler) basePage(r *http.Request) BasePage {
	token, err := h.csrf.Issue(r.Context())
	if err != nil {
		token = ""
	}
	return BasePage{User: auth.UserFromContext(r.Context()), CSRFToken: token}
}

func parseQuestionForm(r *http.Request) QuestionForm {
	correct, _ := strconv.Atoi(r.PostFormValue("correct"))
	return QuestionForm{
		Prompt: r.PostFormValue("prompt"),
		Choices: [4]string{
			r.PostFormValue("choice1"),
			r.PostFormValue("choice2"),
			r.PostFormValue("choice3"),
			r.PostFormValue("choice4"),
		},
		CorrectOrdinal: correct,
		Explanation:    r.PostFormValue("explanation"),
	}
}

func (f QuestionForm) draft() store.QuestionDraft {
	return store.QuestionDraft{
		Prompt:         f.Prompt,
		Choices:        f.Choices[:],
		CorrectOrdinal: f.CorrectOrdinal,
		Explanation:    f.Explanation,
	}
}
