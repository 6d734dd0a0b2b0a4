package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/history-quiz/historyquiz/internal/auth"
	"github.com/history-quiz/historyquiz/internal/config"
	"github.com/history-quiz/historyquiz/internal/oidc"
	"github.com/history-quiz/historyquiz/internal/quiz"
	"github.com/history-quiz/historyquiz/internal/store"
	"github.com/history-quiz/historyquiz/internal/testutil"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.OIDC.IssuerURL = "https://issuer.example"
	cfg.OIDC.ClientID = "quiz-client"
	cfg.OIDC.ClientSecret = "quiz-secret"
	return cfg
}

type routerTestEnv struct {
	router  http.Handler
	cookies []*http.Cookie
}

// newRouterTestEnv builds the full router over an in-memory database with the
// migration-seeded question set.
func newRouterTestEnv(t *testing.T) *routerTestEnv {
	t.Helper()
	db := testutil.NewTestDB(t)

	sm := auth.NewSessionManager(db, "sqlite3", time.Hour, false)
	users := store.NewUserStore(db)
	questions := store.NewQuestionStore(db)
	attempts := store.NewAttemptStore(db)

	router := NewRouter(Deps{
		SessionManager:  sm,
		AuthHandlers:    auth.NewHandlers(oidc.NewClient(), testConfig(), sm, users),
		AuthMiddleware:  auth.NewMiddleware(sm, users),
		CSRF:            auth.NewCSRF(sm),
		QuizService:     quiz.NewService(questions, attempts),
		QuestionStore:   questions,
		AttemptStore:    attempts,
		MaxRequestBytes: 1 << 20,
	})
	return &routerTestEnv{router: router}
}

func (e *routerTestEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range e.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	if set := rec.Result().Cookies(); len(set) > 0 {
		e.cookies = set
	}
	return rec
}

// extractInput pulls the value of a named form input out of rendered HTML.
func extractInput(t *testing.T, html, name string) string {
	t.Helper()
	re := regexp.MustCompile(`name="` + name + `" value="([^"]*)"`)
	m := re.FindStringSubmatch(html)
	if m == nil {
		t.Fatalf("no input named %q in page", name)
	}
	return m[1]
}

func TestQuizPageServesSeededQuestion(t *testing.T) {
	env := newRouterTestEnv(t)

	rec := env.do(t, http.MethodGet, "/quiz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /quiz = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `name="question_id"`) {
		t.Error("quiz page has no question form")
	}
	if got := strings.Count(body, `name="choice_id"`); got != 4 {
		t.Errorf("quiz page offers %d choices, want 4", got)
	}
}

func TestQuizAnswerRoundTrip(t *testing.T) {
	env := newRouterTestEnv(t)

	rec := env.do(t, http.MethodGet, "/quiz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /quiz = %d, want 200", rec.Code)
	}
	page := rec.Body.String()
	csrfToken := extractInput(t, page, auth.CSRFFieldName)
	questionID := extractInput(t, page, "question_id")
	choiceRe := regexp.MustCompile(`name="choice_id" value="([^"]+)"`)
	choices := choiceRe.FindAllStringSubmatch(page, -1)
	if len(choices) != 4 {
		t.Fatalf("found %d choices, want 4", len(choices))
	}

	form := url.Values{}
	form.Set(auth.CSRFFieldName, csrfToken)
	form.Set("question_id", questionID)
	form.Set("choice_id", choices[0][1])

	rec = env.do(t, http.MethodPost, "/quiz/answer", form.Encode())
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /quiz/answer = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	verdict := rec.Body.String()
	if !strings.Contains(verdict, "Correct!") && !strings.Contains(verdict, "Not quite.") {
		t.Error("answer page shows no verdict")
	}
}

func TestQuizAnswerRequiresCSRFToken(t *testing.T) {
	env := newRouterTestEnv(t)

	rec := env.do(t, http.MethodGet, "/quiz", "")
	page := rec.Body.String()
	questionID := extractInput(t, page, "question_id")

	form := url.Values{}
	form.Set("question_id", questionID)
	form.Set("choice_id", questionID) // value irrelevant, the middleware rejects first

	rec = env.do(t, http.MethodPost, "/quiz/answer", form.Encode())
	if rec.Code != http.StatusForbidden {
		t.Errorf("POST without token = %d, want 403", rec.Code)
	}
}

func TestProtectedRoutesRedirectAnonymousUsers(t *testing.T) {
	env := newRouterTestEnv(t)

	for _, target := range []string{"/me", "/questions/new"} {
		rec := env.do(t, http.MethodGet, target, "")
		if rec.Code != http.StatusFound {
			t.Errorf("GET %s = %d, want 302", target, rec.Code)
			continue
		}
		location := rec.Header().Get("Location")
		if !strings.HasPrefix(location, "/auth/login?redirect=") {
			t.Errorf("GET %s redirected to %q, want the login page", target, location)
		}
	}
}

func TestLandingAndNotFound(t *testing.T) {
	env := newRouterTestEnv(t)

	rec := env.do(t, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET / = %d, want 200", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/no-such-page", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /no-such-page = %d, want 404", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newRouterTestEnv(t)

	rec := env.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "historyquiz_") {
		t.Error("metrics output carries no historyquiz_ series")
	}
}
