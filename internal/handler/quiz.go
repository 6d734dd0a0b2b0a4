package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/history-quiz/historyquiz/internal/auth"
	"github.com/history-quiz/historyquiz/internal/quiz"
	"github.com/history-quiz/historyquiz/internal/store"
)

// AnswerView is the judged-answer panel shown under the question.
type AnswerView struct {
	IsCorrect    bool
	CorrectLabel string
	Explanation  string
}

// QuizPage is the template data for the quiz screen.
type QuizPage struct {
	BasePage
	Question *store.Question
	Answer   *AnswerView
	Empty    bool
}

// QuizHandler serves questions and judges answers.
type QuizHandler struct {
	quiz *quiz.Service
	csrf *auth.CSRF
}

func NewQuizHandler(qs *quiz.Service, csrf *auth.CSRF) *QuizHandler {
	return &QuizHandler{quiz: qs, csrf: csrf}
}

// Show serves the next question at GET /quiz. The previously shown question
// id rides along in the "prev" query parameter so it can be avoided.
func (h *QuizHandler) Show(w http.ResponseWriter, r *http.Request) {
	question, err := h.quiz.NextQuestion(r.Context(), middleware.GetReqID(r.Context()), r.URL.Query().Get("prev"))
	if err != nil && !errors.Is(err, quiz.ErrNoQuestions) {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := QuizPage{
		BasePage: h.basePage(r),
		Question: question,
		Empty:    question == nil,
	}
	render(w, "quiz.html", data)
}

// Answer judges a submission at POST /quiz/answer and re-renders the same
// question with the verdict, the correct choice, and the explanation.
func (h *QuizHandler) Answer(w http.ResponseWriter, r *http.Request) {
	questionID := r.PostFormValue("question_id")
	choiceID := r.PostFormValue("choice_id")

	var userID string
	if user := auth.UserFromContext(r.Context()); user != nil {
		userID = user.ID
	}

	result, err := h.quiz.SubmitAnswer(r.Context(), userID, questionID, choiceID)
	if err != nil {
		switch {
		case errors.Is(err, quiz.ErrBadAnswer):
			http.Error(w, "Please pick one of the offered choices.", http.StatusBadRequest)
		case errors.Is(err, store.ErrNotFound):
			http.Error(w, "That question no longer exists.", http.StatusNotFound)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	question, err := h.quiz.Question(r.Context(), questionID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	answer := &AnswerView{IsCorrect: result.IsCorrect, Explanation: question.Explanation}
	for _, c := range question.Choices {
		if c.ID == result.CorrectChoiceID {
			answer.CorrectLabel = c.Label
		}
	}

	data := QuizPage{
		BasePage: h.basePage(r),
		Question: question,
		Answer:   answer,
	}
	render(w, "quiz.html", data)
}

func (h *QuizHandler) basePage(r *http.Request) BasePage {
	token, err := h.csrf.Issue(r.Context())
	if err != nil {
		token = ""
	}
	return BasePage{User: auth.UserFromContext(r.Context()), CSRFToken: token}
}
