package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/history-quiz/historyquiz/internal/auth"
)

func sessionContext(t *testing.T, sm *scs.SessionManager) context.Context {
	t.Helper()
	ctx, err := sm.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	return ctx
}

func TestCSRFIssueIsIdempotent(t *testing.T) {
	sm := scs.New()
	csrf := auth.NewCSRF(sm)
	ctx := sessionContext(t, sm)

	first, err := csrf.Issue(ctx)
	if err != nil {
		t.Fatalf("first Issue: %v", err)
	}
	if first == "" {
		t.Fatal("Issue returned an empty token")
	}
	second, err := csrf.Issue(ctx)
	if err != nil {
		t.Fatalf("second Issue: %v", err)
	}
	if first != second {
		t.Errorf("re-issue rotated the token: %q then %q", first, second)
	}
}

func TestCSRFVerify(t *testing.T) {
	sm := scs.New()
	csrf := auth.NewCSRF(sm)
	ctx := sessionContext(t, sm)

	token, err := csrf.Issue(ctx)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if !csrf.Verify(ctx, token) {
		t.Error("the issued token failed verification")
	}
	if csrf.Verify(ctx, "") {
		t.Error("empty token verified")
	}
	if csrf.Verify(ctx, token[:len(token)-1]+"x") {
		t.Error("mutated token verified")
	}
	if csrf.Verify(ctx, token+"extra") {
		t.Error("lengthened token verified")
	}

	// A session that never issued a token rejects everything.
	fresh := sessionContext(t, sm)
	if csrf.Verify(fresh, token) {
		t.Error("token verified against a session that never issued one")
	}
}

// csrfTestApp wires the CSRF middleware behind the session manager the way
// the router does: /token issues the session token, /submit is protected.
func csrfTestApp(sm *scs.SessionManager, csrf *auth.CSRF) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		token, err := csrf.Issue(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(token))
	})
	mux.Handle("/submit", csrf.Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))
	return sm.LoadAndSave(mux)
}

func TestCSRFProtect(t *testing.T) {
	sm := scs.New()
	csrf := auth.NewCSRF(sm)
	app := csrfTestApp(sm, csrf)

	// Establish a session and collect its token.
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/token", nil))
	token := rec.Body.String()
	cookies := rec.Result().Cookies()
	if token == "" || len(cookies) == 0 {
		t.Fatalf("setup failed: token=%q cookies=%d", token, len(cookies))
	}

	post := func(formToken string, withCookie bool) int {
		form := url.Values{}
		if formToken != "" {
			form.Set(auth.CSRFFieldName, formToken)
		}
		req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if withCookie {
			for _, c := range cookies {
				req.AddCookie(c)
			}
		}
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := post(token, true); got != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", got)
	}
	if got := post("not-the-token", true); got != http.StatusForbidden {
		t.Errorf("wrong token: status = %d, want 403", got)
	}
	if got := post("", true); got != http.StatusForbidden {
		t.Errorf("missing token: status = %d, want 403", got)
	}
	if got := post(token, false); got != http.StatusForbidden {
		t.Errorf("no session cookie: status = %d, want 403", got)
	}
}

func TestCSRFProtectPassesSafeMethods(t *testing.T) {
	sm := scs.New()
	csrf := auth.NewCSRF(sm)

	protected := csrf.Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	app := sm.LoadAndSave(protected)

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(method, "/", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200 without a token", method, rec.Code)
		}
	}
}
