package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/history-quiz/historyquiz/internal/metrics"
)

// tokenResponse is the token endpoint's reply. Only the ID token is used
// downstream; the access token is discarded after validation because this
// flow is login-only.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
	Scope       string `json:"scope,omitempty"`

	// Error is set when the provider rejected the grant.
	Error string `json:"error,omitempty"`
}

// exchangeCode POSTs the authorization code and the original PKCE verifier to
// the token endpoint. The three failure shapes (transport/non-2xx, an error
// field in the body, a body missing required fields) carry distinct messages
// so the operator can tell them apart in logs.
func (c *Client) exchangeCode(ctx context.Context, cfg ResolvedConfig, tokenEndpoint, code, codeVerifier string) (tokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", cfg.ClientID)
	form.Set("client_secret", cfg.ClientSecret)
	form.Set("code", code)
	form.Set("code_verifier", codeVerifier)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", cfg.RedirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return tokenResponse{}, flowErrorCause(http.StatusBadGateway,
			"Token exchange with the sign-in provider failed. Please try again later.", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	metrics.ProviderFetchesTotal.WithLabelValues("token").Inc()
	resp, err := c.http.Do(req)
	if err != nil {
		return tokenResponse{}, flowErrorCause(http.StatusBadGateway,
			"Token exchange with the sign-in provider failed. Please try again later.", err)
	}
	defer resp.Body.Close()

	var tokens tokenResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&tokens)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return tokenResponse{}, flowError(http.StatusBadGateway,
			"Token exchange with the sign-in provider failed. Please try again later.")
	}
	if decodeErr != nil {
		return tokenResponse{}, flowErrorCause(http.StatusBadGateway,
			"The sign-in provider's token response was not JSON.", decodeErr)
	}
	if tokens.Error != "" {
		return tokenResponse{}, flowError(http.StatusUnauthorized,
			"The sign-in provider rejected the request. Please sign in again.")
	}
	if tokens.AccessToken == "" || tokens.IDToken == "" || tokens.TokenType == "" {
		return tokenResponse{}, flowError(http.StatusBadGateway,
			"The sign-in provider's token response was incomplete.")
	}

	return tokens, nil
}
