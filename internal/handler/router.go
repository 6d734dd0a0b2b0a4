package handler

import (
	"io/fs"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/history-quiz/historyquiz/internal/auth"
	"github.com/history-quiz/historyquiz/internal/quiz"
	"github.com/history-quiz/historyquiz/internal/store"
	"github.com/history-quiz/historyquiz/web"
)

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	SessionManager *scs.SessionManager
	AuthHandlers   *auth.Handlers
	AuthMiddleware *auth.Middleware
	CSRF           *auth.CSRF
	QuizService    *quiz.Service
	QuestionStore  *store.QuestionStore
	AttemptStore   *store.AttemptStore

	// MaxRequestBytes caps form bodies before they are parsed.
	MaxRequestBytes int64
}

// NewRouter assembles the full chi router with all middleware and routes.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Standard middleware. RequestID feeds the correlation ids echoed on
	// auth and CSRF failures.
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	if deps.MaxRequestBytes > 0 {
		r.Use(middleware.RequestSize(deps.MaxRequestBytes))
	}
	r.Use(deps.SessionManager.LoadAndSave)

	// Static assets (embedded).
	staticSub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("failed to sub static FS: " + err.Error())
	}
	r.Handle("/static/*", http.StripPrefix("/static", http.FileServer(http.FS(staticSub))))

	r.Handle("/metrics", promhttp.Handler())

	// Auth routes. Logout is a state change, so it goes through the CSRF
	// middleware like every other POST.
	r.Get("/auth/login", deps.AuthHandlers.Login)
	r.Get("/auth/callback", deps.AuthHandlers.Callback)
	r.With(deps.CSRF.Protect).Post("/auth/logout", deps.AuthHandlers.Logout)

	landing := NewLandingHandler()
	quizHandler := NewQuizHandler(deps.QuizService, deps.CSRF)
	questionsHandler := NewQuestionsHandler(deps.QuestionStore, deps.CSRF)
	meHandler := NewMeHandler(deps.AttemptStore, deps.QuestionStore, deps.CSRF)

	// The quiz is playable anonymously; attempts are only recorded for
	// signed-in players.
	r.Group(func(r chi.Router) {
		r.Use(deps.AuthMiddleware.OptionalUser)
		r.Get("/", landing.Index)
		r.Get("/quiz", quizHandler.Show)
		r.With(deps.CSRF.Protect).Post("/quiz/answer", quizHandler.Answer)
	})

	// Authoring and profile require a signed-in user.
	r.Group(func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAuth)
		r.Get("/me", meHandler.Show)
		r.Get("/questions/new", questionsHandler.New)
		r.With(deps.CSRF.Protect).Post("/questions", questionsHandler.Create)
		r.Get("/questions/{id}/edit", questionsHandler.Edit)
		r.With(deps.CSRF.Protect).Post("/questions/{id}", questionsHandler.Update)
	})

	return r
}
