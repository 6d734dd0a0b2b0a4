package oidc

import (
	"context"
	"encoding/json"
	"net/http"

	jose "github.com/go-jose/go-jose/v4"

	"github.com/history-quiz/historyquiz/internal/metrics"
)

// keys returns the provider's signing keys for jwksURI, from cache when
// fresh. An empty key array is treated as a fetch failure, not a valid empty
// result — it would make every subsequent verification fail for a full TTL.
func (c *Client) keys(ctx context.Context, jwksURI string) (*jose.JSONWebKeySet, error) {
	if set, ok := c.jwks.get(jwksURI); ok {
		return set, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURI, nil)
	if err != nil {
		return nil, flowErrorCause(http.StatusBadGateway,
			"Could not fetch the provider's signing keys. Please try again later.", err)
	}
	req.Header.Set("Accept", "application/json")

	metrics.ProviderFetchesTotal.WithLabelValues("jwks").Inc()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, flowErrorCause(http.StatusBadGateway,
			"Could not fetch the provider's signing keys. Please try again later.", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, flowError(http.StatusBadGateway,
			"Could not fetch the provider's signing keys. Please try again later.")
	}

	var set jose.JSONWebKeySet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, flowErrorCause(http.StatusBadGateway,
			"The provider's signing key set could not be parsed.", err)
	}
	if len(set.Keys) == 0 {
		return nil, flowError(http.StatusBadGateway,
			"The provider published an empty signing key set.")
	}

	c.jwks.put(jwksURI, &set)
	return &set, nil
}

// selectKey picks the verification key matching kid, or the first key in the
// set when the token header carries no kid.
func selectKey(set *jose.JSONWebKeySet, kid string) (jose.JSONWebKey, error) {
	if kid == "" {
		return set.Keys[0], nil
	}
	for _, key := range set.Keys {
		if key.KeyID == kid {
			return key, nil
		}
	}
	return jose.JSONWebKey{}, flowError(http.StatusUnauthorized,
		"No verification key is available for this sign-in. Please sign in again.")
}
