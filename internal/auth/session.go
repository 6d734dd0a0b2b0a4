package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"

	"github.com/history-quiz/historyquiz/internal/oidc"
)

// Session field names. The pending_* group is the short-lived record carried
// across the provider redirect; user_id is the authenticated subject slot.
const (
	SessionUserIDKey = "user_id"

	sessionCSRFTokenKey = "csrf_token"

	sessionPendingStateKey      = "pending_state"
	sessionPendingNonceKey      = "pending_nonce"
	sessionPendingVerifierKey   = "pending_code_verifier"
	sessionPendingRedirectToKey = "pending_redirect_to"
)

// NewSessionManager creates an SCS session manager backed by the application
// DB. The driver parameter selects the appropriate store: "mysql",
// "postgres", or "sqlite3" (default).
func NewSessionManager(db *sqlx.DB, driver string, lifetime time.Duration, secure bool) *scs.SessionManager {
	sm := scs.New()
	switch driver {
	case "mysql":
		sm.Store = mysqlstore.New(db.DB)
	case "postgres":
		sm.Store = postgresstore.New(db.DB)
	default: // sqlite3
		sm.Store = sqlite3store.New(db.DB)
	}
	sm.Lifetime = lifetime
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = secure
	sm.Cookie.SameSite = http.SameSiteLaxMode
	return sm
}

// putPendingAuth stores the pending record in the session. A session holds at
// most one pending record: a second concurrent begin (two tabs) overwrites
// the first, which is accepted behavior.
func putPendingAuth(ctx context.Context, sm *scs.SessionManager, pending oidc.PendingAuth) {
	sm.Put(ctx, sessionPendingStateKey, pending.State)
	sm.Put(ctx, sessionPendingNonceKey, pending.Nonce)
	sm.Put(ctx, sessionPendingVerifierKey, pending.CodeVerifier)
	sm.Put(ctx, sessionPendingRedirectToKey, pending.RedirectTo)
}

// takePendingAuth reads AND removes the pending record, enforcing single use:
// whether the callback then succeeds or fails, the record is gone.
func takePendingAuth(ctx context.Context, sm *scs.SessionManager) (oidc.PendingAuth, bool) {
	pending := oidc.PendingAuth{
		State:        sm.PopString(ctx, sessionPendingStateKey),
		Nonce:        sm.PopString(ctx, sessionPendingNonceKey),
		CodeVerifier: sm.PopString(ctx, sessionPendingVerifierKey),
		RedirectTo:   sm.PopString(ctx, sessionPendingRedirectToKey),
	}
	if pending.State == "" || pending.Nonce == "" || pending.CodeVerifier == "" {
		return oidc.PendingAuth{}, false
	}
	return pending, true
}

// SanitizeRedirect allows only internal paths as post-login targets, closing
// the open-redirect hole: absolute URLs and protocol-relative //host paths
// fall back to the given default.
func SanitizeRedirect(redirectTo, fallback string) string {
	if redirectTo == "" || !strings.HasPrefix(redirectTo, "/") || strings.HasPrefix(redirectTo, "//") {
		return fallback
	}
	return redirectTo
}
