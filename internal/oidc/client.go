// Package oidc implements the relying-party side of the OpenID Connect
// authorization-code flow with PKCE: discovery and JWKS caching, token
// exchange, ID-token signature verification, and claim validation.
package oidc

import (
	"net/http"
	"time"

	jose "github.com/go-jose/go-jose/v4"
)

// defaultHTTPTimeout bounds every outbound provider call (discovery, token
// exchange, JWKS) so a slow provider cannot hang a login indefinitely.
const defaultHTTPTimeout = 10 * time.Second

// Client performs the relying-party side of the authorization-code flow. It
// owns the process-wide discovery and JWKS caches and is safe for concurrent
// use. Construct one at startup and share it across requests.
type Client struct {
	http      *http.Client
	now       func() time.Time
	discovery *ttlCache[DiscoveryDocument]
	jwks      *ttlCache[*jose.JSONWebKeySet]
}

// Option customizes a Client. Used by tests to substitute the HTTP transport
// and clock.
type Option func(*Client)

// WithHTTPClient replaces the outbound HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithNow replaces the clock used for cache expiry and claim validation.
func WithNow(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a Client with a bounded-timeout HTTP client and empty
// caches.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{Timeout: defaultHTTPTimeout},
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.discovery = newTTLCache[DiscoveryDocument](cacheTTL, c.now)
	c.jwks = newTTLCache[*jose.JSONWebKeySet](cacheTTL, c.now)
	return c
}
