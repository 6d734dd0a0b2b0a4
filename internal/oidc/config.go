package oidc

import (
	"net/http"
	"strings"

	"github.com/history-quiz/historyquiz/internal/config"
)

// ResolvedConfig is the per-request view of the provider settings. Issuer is
// normalized (no trailing slash) so it compares exactly against the iss claim.
type ResolvedConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       string
}

const (
	defaultScopes = "openid profile email"
	callbackPath  = "/auth/callback"
)

// ResolveConfig derives the OIDC settings for one request. Issuer, client id,
// and client secret are required; a blank value is a configuration error the
// operator must fix, surfaced to the user as a generic message. The redirect
// URI defaults to the request origin + /auth/callback, the scopes to
// "openid profile email".
func ResolveConfig(cfg *config.Config, r *http.Request) (ResolvedConfig, error) {
	issuer := strings.TrimSpace(cfg.OIDC.IssuerURL)
	clientID := strings.TrimSpace(cfg.OIDC.ClientID)
	clientSecret := strings.TrimSpace(cfg.OIDC.ClientSecret)
	if issuer == "" || clientID == "" || clientSecret == "" {
		return ResolvedConfig{}, flowError(http.StatusInternalServerError,
			"Sign-in is not configured. Please contact the administrator.")
	}

	redirectURI := strings.TrimSpace(cfg.OIDC.RedirectURI)
	if redirectURI == "" {
		redirectURI = requestOrigin(r) + callbackPath
	}

	scopes := strings.TrimSpace(cfg.OIDC.Scopes)
	if scopes == "" {
		scopes = defaultScopes
	}

	return ResolvedConfig{
		IssuerURL:    normalizeIssuerURL(issuer),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		Scopes:       scopes,
	}, nil
}

// normalizeIssuerURL strips trailing slashes so cached discovery keys and the
// iss claim comparison don't depend on how the operator wrote the URL.
func normalizeIssuerURL(input string) string {
	return strings.TrimRight(input, "/")
}

// requestOrigin reconstructs scheme://host for the inbound request, honoring
// X-Forwarded-Proto when running behind a TLS-terminating proxy.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
