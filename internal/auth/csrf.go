package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/history-quiz/historyquiz/internal/metrics"
)

// CSRFFieldName is the hidden form field every state-changing POST must carry.
const CSRFFieldName = "csrf_token"

const csrfTokenBytes = 32

// CSRF implements double-submit CSRF protection: a random per-session token
// that must be echoed back in the form body of every state-changing request.
type CSRF struct {
	sessions *scs.SessionManager
}

// NewCSRF creates the CSRF service on top of the session manager.
func NewCSRF(sm *scs.SessionManager) *CSRF {
	return &CSRF{sessions: sm}
}

// Issue returns the session's CSRF token, generating and storing one on first
// use. Re-issuing is idempotent: an existing token is returned unchanged, so
// no session write (and no Set-Cookie) happens.
func (c *CSRF) Issue(ctx context.Context) (string, error) {
	if token := c.sessions.GetString(ctx, sessionCSRFTokenKey); token != "" {
		return token, nil
	}
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(b)
	c.sessions.Put(ctx, sessionCSRFTokenKey, token)
	return token, nil
}

// Verify reports whether posted matches the session token. Both must be
// present; the comparison is fixed-time so repeated guesses leak nothing
// about the position of the first mismatching byte.
func (c *CSRF) Verify(ctx context.Context, posted string) bool {
	sessionToken := c.sessions.GetString(ctx, sessionCSRFTokenKey)
	if sessionToken == "" || posted == "" {
		return false
	}
	if len(sessionToken) != len(posted) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(sessionToken), []byte(posted)) == 1
}

// Protect rejects state-changing requests whose form body does not carry the
// session's token. GET/HEAD/OPTIONS pass through. The 403 carries the request
// correlation id so a user report can be matched to the log line.
func (c *CSRF) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if !c.Verify(r.Context(), r.PostFormValue(CSRFFieldName)) {
			metrics.CSRFRejectionsTotal.Inc()
			w.Header().Set("X-Request-Id", middleware.GetReqID(r.Context()))
			http.Error(w, "Security check failed. Please reload the page and try again.", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
