package oidc

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/history-quiz/historyquiz/internal/metrics"
)

// DiscoveryDocument is the subset of the provider metadata this flow needs.
// All four fields are required.
type DiscoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	JWKSURI               string `json:"jwks_uri"`
}

// Discover returns the provider metadata for issuerURL, from cache when fresh.
// A cache hit makes no network call. Fetch or parse failures surface as a
// 502-kind error and leave the cache untouched, so the next call retries.
func (c *Client) Discover(ctx context.Context, issuerURL string) (DiscoveryDocument, error) {
	if doc, ok := c.discovery.get(issuerURL); ok {
		return doc, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, issuerURL+"/.well-known/openid-configuration", nil)
	if err != nil {
		return DiscoveryDocument{}, flowErrorCause(http.StatusBadGateway,
			"Could not reach the sign-in provider. Please try again later.", err)
	}
	req.Header.Set("Accept", "application/json")

	metrics.ProviderFetchesTotal.WithLabelValues("discovery").Inc()
	resp, err := c.http.Do(req)
	if err != nil {
		return DiscoveryDocument{}, flowErrorCause(http.StatusBadGateway,
			"Could not reach the sign-in provider. Please try again later.", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return DiscoveryDocument{}, flowError(http.StatusBadGateway,
			"Could not reach the sign-in provider. Please try again later.")
	}

	var doc DiscoveryDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return DiscoveryDocument{}, flowErrorCause(http.StatusBadGateway,
			"The sign-in provider returned an unexpected response.", err)
	}
	if doc.Issuer == "" || doc.AuthorizationEndpoint == "" || doc.TokenEndpoint == "" || doc.JWKSURI == "" {
		return DiscoveryDocument{}, flowError(http.StatusBadGateway,
			"The sign-in provider returned an incomplete discovery document.")
	}

	c.discovery.put(issuerURL, doc)
	return doc, nil
}
