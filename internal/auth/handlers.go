package auth

import (
	"log"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/history-quiz/historyquiz/internal/config"
	"github.com/history-quiz/historyquiz/internal/metrics"
	"github.com/history-quiz/historyquiz/internal/oidc"
	"github.com/history-quiz/historyquiz/internal/store"
)

const defaultPostLoginPath = "/me"

// Handlers provides HTTP handlers for the OIDC authentication flow.
type Handlers struct {
	oidc     *oidc.Client
	cfg      *config.Config
	sessions *scs.SessionManager
	users    *store.UserStore
}

// NewHandlers creates a new Handlers with the given dependencies.
func NewHandlers(client *oidc.Client, cfg *config.Config, sm *scs.SessionManager, us *store.UserStore) *Handlers {
	return &Handlers{oidc: client, cfg: cfg, sessions: sm, users: us}
}

// Login initiates the authorization code flow with PKCE. An already
// authenticated session is sent straight to its target. The pending record is
// written to the session before the redirect so the callback can tie the
// provider's response back to this browser.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	redirectTo := SanitizeRedirect(r.URL.Query().Get("redirect"), defaultPostLoginPath)

	if h.sessions.GetString(r.Context(), SessionUserIDKey) != "" {
		http.Redirect(w, r, redirectTo, http.StatusFound)
		return
	}

	resolved, err := oidc.ResolveConfig(h.cfg, r)
	if err != nil {
		h.failAuth(w, r, err)
		return
	}

	authReq, err := h.oidc.BeginAuthorization(r.Context(), resolved, redirectTo)
	if err != nil {
		h.failAuth(w, r, err)
		return
	}

	putPendingAuth(r.Context(), h.sessions, authReq.Pending)
	http.Redirect(w, r, authReq.URL, http.StatusFound)
}

// Callback handles the provider redirect after authentication. The pending
// record is consumed (removed) up front, so it is single-use no matter how
// the rest of the handler turns out. A callback with no pending record is
// always rejected, even when code and state look plausible.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("error") != "" {
		// Provider-side rejection (user denied consent, etc). Never echo the
		// provider's error text back to the browser.
		_, _ = takePendingAuth(r.Context(), h.sessions)
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		h.reject(w, r, http.StatusUnauthorized, "The sign-in provider rejected the request. Please sign in again.")
		return
	}

	code, state := q.Get("code"), q.Get("state")
	if code == "" || state == "" {
		h.reject(w, r, http.StatusBadRequest, "The sign-in response was missing required parameters.")
		return
	}

	pending, ok := takePendingAuth(r.Context(), h.sessions)
	if !ok {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		h.reject(w, r, http.StatusUnauthorized, "Your sign-in session has expired. Please sign in again.")
		return
	}
	if state != pending.State {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		h.reject(w, r, http.StatusUnauthorized, "The sign-in response failed a security check. Please sign in again.")
		return
	}

	resolved, err := oidc.ResolveConfig(h.cfg, r)
	if err != nil {
		h.failAuth(w, r, err)
		return
	}

	subject, err := h.oidc.CompleteAuthorization(r.Context(), resolved, code, pending)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		h.failAuth(w, r, err)
		return
	}

	user, err := h.users.Upsert(r.Context(), resolved.IssuerURL, subject)
	if err != nil {
		log.Printf("auth callback: user upsert failed: %v request_id=%s", err, middleware.GetReqID(r.Context()))
		h.reject(w, r, http.StatusInternalServerError, "Sign-in failed. Please try again.")
		return
	}

	// Rotate the session token on privilege change.
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		log.Printf("auth callback: session renew failed: %v request_id=%s", err, middleware.GetReqID(r.Context()))
		h.reject(w, r, http.StatusInternalServerError, "Sign-in failed. Please try again.")
		return
	}
	h.sessions.Put(r.Context(), SessionUserIDKey, user.ID)

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	http.Redirect(w, r, SanitizeRedirect(pending.RedirectTo, defaultPostLoginPath), http.StatusFound)
}

// Logout destroys the session and returns to the landing page. Registered
// behind the CSRF middleware, so a cross-site form can't log the user out.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context()); err != nil {
		h.reject(w, r, http.StatusInternalServerError, "Logout failed. Please try again.")
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// failAuth maps a flow error to its HTTP status and safe message, logging the
// full error (with cause) against the request correlation id.
func (h *Handlers) failAuth(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("auth: %v request_id=%s", err, middleware.GetReqID(r.Context()))
	h.reject(w, r, oidc.StatusFor(err), oidc.UserMessage(err))
}

func (h *Handlers) reject(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("X-Request-Id", middleware.GetReqID(r.Context()))
	http.Error(w, message, status)
}
