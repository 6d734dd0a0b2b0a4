package oidc

import (
	"context"
	"net/http"
	"net/url"
)

// PendingAuth is the per-session record that survives the redirect round-trip
// to the provider. It is created by BeginAuthorization, persisted by the
// caller, and consumed exactly once at the callback.
type PendingAuth struct {
	State        string
	Nonce        string
	CodeVerifier string
	RedirectTo   string
}

// AuthorizationRequest is the result of BeginAuthorization: the provider URL
// to redirect the browser to, and the record the caller must persist before
// redirecting.
type AuthorizationRequest struct {
	URL     string
	Pending PendingAuth
}

// BeginAuthorization starts the authorization-code flow: it resolves the
// provider's authorization endpoint via discovery, generates state, nonce,
// and a PKCE verifier/challenge pair, and composes the authorization URL.
// It mutates no shared state beyond the discovery cache.
func (c *Client) BeginAuthorization(ctx context.Context, cfg ResolvedConfig, redirectTo string) (AuthorizationRequest, error) {
	discovery, err := c.Discover(ctx, cfg.IssuerURL)
	if err != nil {
		return AuthorizationRequest{}, err
	}

	state, err := randomURLSafe(stateLength)
	if err != nil {
		return AuthorizationRequest{}, flowErrorCause(http.StatusInternalServerError,
			"Could not start sign-in. Please try again.", err)
	}
	nonce, err := randomURLSafe(nonceLength)
	if err != nil {
		return AuthorizationRequest{}, flowErrorCause(http.StatusInternalServerError,
			"Could not start sign-in. Please try again.", err)
	}
	verifier, err := randomURLSafe(codeVerifierLength)
	if err != nil {
		return AuthorizationRequest{}, flowErrorCause(http.StatusInternalServerError,
			"Could not start sign-in. Please try again.", err)
	}

	authURL, err := url.Parse(discovery.AuthorizationEndpoint)
	if err != nil {
		return AuthorizationRequest{}, flowErrorCause(http.StatusBadGateway,
			"The sign-in provider advertised an invalid authorization endpoint.", err)
	}
	q := authURL.Query()
	q.Set("client_id", cfg.ClientID)
	q.Set("code_challenge", CodeChallenge(verifier))
	q.Set("code_challenge_method", "S256")
	q.Set("nonce", nonce)
	q.Set("redirect_uri", cfg.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", cfg.Scopes)
	q.Set("state", state)
	authURL.RawQuery = q.Encode()

	return AuthorizationRequest{
		URL: authURL.String(),
		Pending: PendingAuth{
			State:        state,
			Nonce:        nonce,
			CodeVerifier: verifier,
			RedirectTo:   redirectTo,
		},
	}, nil
}

// CompleteAuthorization finishes the flow after the provider redirected back:
// it exchanges the authorization code for tokens, verifies the ID token
// signature against the provider's JWKS, validates the claims against the
// pending record, and returns the authenticated subject. Clearing the pending
// record and writing the subject into the session is the caller's job.
func (c *Client) CompleteAuthorization(ctx context.Context, cfg ResolvedConfig, code string, pending PendingAuth) (string, error) {
	discovery, err := c.Discover(ctx, cfg.IssuerURL)
	if err != nil {
		return "", err
	}

	tokens, err := c.exchangeCode(ctx, cfg, discovery.TokenEndpoint, code, pending.CodeVerifier)
	if err != nil {
		return "", err
	}

	claims, err := c.verifyIDToken(ctx, tokens.IDToken, discovery.JWKSURI)
	if err != nil {
		return "", err
	}

	if err := c.validateClaims(claims, expectedClaims{
		issuer:   discovery.Issuer,
		clientID: cfg.ClientID,
		nonce:    pending.Nonce,
	}); err != nil {
		return "", err
	}

	return claims.Subject, nil
}
