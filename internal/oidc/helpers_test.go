package oidc

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jose "github.com/go-jose/go-jose/v4"
)

// clock is a manually advanced time source for cache-expiry tests.
type clock struct {
	t time.Time
}

func testClock(t *testing.T) *clock {
	t.Helper()
	return &clock{t: time.Unix(1_700_000_000, 0)}
}

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// newSigningKey generates a throwaway RSA key for token tests.
func newSigningKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

// signToken builds a compact JWS over header and payload, signed with key.
// The alg in header decides the hash; unsupported algs are signed with SHA-256
// so the bytes are still a structurally valid token.
func signToken(t *testing.T, key *rsa.PrivateKey, header, payload map[string]any) string {
	t.Helper()

	headerJSON, err := json.Marshal(header)
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) +
		"." + base64.RawURLEncoding.EncodeToString(payloadJSON)

	hash := crypto.SHA256
	switch header["alg"] {
	case "RS384":
		hash = crypto.SHA384
	case "RS512":
		hash = crypto.SHA512
	}
	hasher := hash.New()
	hasher.Write([]byte(signingInput))

	signature, err := rsa.SignPKCS1v15(rand.Reader, key, hash, hasher.Sum(nil))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(signature)
}

// jwksJSON renders a one-key JWKS document for key's public half.
func jwksJSON(t *testing.T, key *rsa.PrivateKey, kid string) string {
	t.Helper()
	set := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{
		{Key: &key.PublicKey, KeyID: kid, Algorithm: "RS256", Use: "sig"},
	}}
	data, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal jwks: %v", err)
	}
	return string(data)
}

// fakeProvider is an httptest server playing the OIDC provider: discovery,
// JWKS, and token endpoint. Fields may be mutated between requests.
type fakeProvider struct {
	server *httptest.Server
	key    *rsa.PrivateKey

	// tokenStatus / tokenBody override the token endpoint reply when set.
	tokenStatus int
	tokenBody   string

	// idToken is returned by the token endpoint when tokenBody is empty.
	idToken string

	discoveryCalls int
	jwksCalls      int
	tokenCalls     int
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	p := &fakeProvider{key: newSigningKey(t)}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		p.discoveryCalls++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(DiscoveryDocument{
			Issuer:                p.server.URL,
			AuthorizationEndpoint: p.server.URL + "/authorize",
			TokenEndpoint:         p.server.URL + "/token",
			JWKSURI:               p.server.URL + "/jwks",
		})
	})
	mux.HandleFunc("/jwks", func(w http.ResponseWriter, r *http.Request) {
		p.jwksCalls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(jwksJSON(t, p.key, "test-kid")))
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		p.tokenCalls++
		w.Header().Set("Content-Type", "application/json")
		if p.tokenStatus != 0 {
			w.WriteHeader(p.tokenStatus)
		}
		if p.tokenBody != "" {
			_, _ = w.Write([]byte(p.tokenBody))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at-123",
			"id_token":     p.idToken,
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})

	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

// issueIDToken signs a token whose claims fit the provider and clientID, with
// overrides applied on top.
func (p *fakeProvider) issueIDToken(t *testing.T, clientID, nonce string, overrides map[string]any) string {
	t.Helper()
	payload := map[string]any{
		"iss":   p.server.URL,
		"sub":   "user-42",
		"aud":   clientID,
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
		"nonce": nonce,
	}
	for k, v := range overrides {
		payload[k] = v
	}
	return signToken(t, p.key, map[string]any{"alg": "RS256", "kid": "test-kid", "typ": "JWT"}, payload)
}

// tamperSignature flips a byte in the token's signature segment.
func tamperSignature(t *testing.T, token string) string {
	t.Helper()
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		t.Fatalf("not a three-segment token: %q", token)
	}
	sig, err := base64.RawURLEncoding.DecodeString(segments[2])
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}
	sig[0] ^= 0x01
	segments[2] = base64.RawURLEncoding.EncodeToString(sig)
	return strings.Join(segments, ".")
}

func testResolvedConfig(p *fakeProvider) ResolvedConfig {
	return ResolvedConfig{
		IssuerURL:    p.server.URL,
		ClientID:     "quiz-client",
		ClientSecret: "quiz-secret",
		RedirectURI:  "https://quiz.example/auth/callback",
		Scopes:       "openid profile email",
	}
}
