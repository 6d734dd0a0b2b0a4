package main

import (
	"context"
	"log"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/history-quiz/historyquiz/internal/auth"
	"github.com/history-quiz/historyquiz/internal/config"
	"github.com/history-quiz/historyquiz/internal/db"
	"github.com/history-quiz/historyquiz/internal/handler"
	"github.com/history-quiz/historyquiz/internal/metrics"
	"github.com/history-quiz/historyquiz/internal/oidc"
	"github.com/history-quiz/historyquiz/internal/quiz"
	"github.com/history-quiz/historyquiz/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			sessionManager := auth.NewSessionManager(database, cfg.DB.Driver, cfg.SessionLifetime, !cfg.InsecureCookies)

			oidcClient := oidc.NewClient()

			userStore := store.NewUserStore(database)
			questionStore := store.NewQuestionStore(database)
			attemptStore := store.NewAttemptStore(database)
			quizService := quiz.NewService(questionStore, attemptStore)

			if n, err := questionStore.Count(context.Background()); err == nil {
				metrics.QuestionsTotal.Set(float64(n))
			}

			authHandlers := auth.NewHandlers(oidcClient, cfg, sessionManager, userStore)
			authMiddleware := auth.NewMiddleware(sessionManager, userStore)
			csrf := auth.NewCSRF(sessionManager)

			router := handler.NewRouter(handler.Deps{
				SessionManager:  sessionManager,
				AuthHandlers:    authHandlers,
				AuthMiddleware:  authMiddleware,
				CSRF:            csrf,
				QuizService:     quizService,
				QuestionStore:   questionStore,
				AttemptStore:    attemptStore,
				MaxRequestBytes: cfg.MaxRequestBytes,
			})

			log.Printf("listening on %s", cfg.HTTP.Addr)
			return http.ListenAndServe(cfg.HTTP.Addr, router)
		},
	}
}
