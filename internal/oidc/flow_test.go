package oidc

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestBeginAuthorization(t *testing.T) {
	p := newFakeProvider(t)
	client := NewClient()
	cfg := testResolvedConfig(p)

	req, err := client.BeginAuthorization(context.Background(), cfg, "/quiz")
	if err != nil {
		t.Fatalf("BeginAuthorization: %v", err)
	}

	authURL, err := url.Parse(req.URL)
	if err != nil {
		t.Fatalf("parse authorization URL: %v", err)
	}
	if !strings.HasPrefix(req.URL, p.server.URL+"/authorize") {
		t.Errorf("URL %q does not target the discovered authorization endpoint", req.URL)
	}

	q := authURL.Query()
	if got := q.Get("response_type"); got != "code" {
		t.Errorf("response_type = %q, want \"code\"", got)
	}
	if got := q.Get("client_id"); got != cfg.ClientID {
		t.Errorf("client_id = %q, want %q", got, cfg.ClientID)
	}
	if got := q.Get("redirect_uri"); got != cfg.RedirectURI {
		t.Errorf("redirect_uri = %q, want %q", got, cfg.RedirectURI)
	}
	if got := q.Get("scope"); got != cfg.Scopes {
		t.Errorf("scope = %q, want %q", got, cfg.Scopes)
	}
	if got := q.Get("code_challenge_method"); got != "S256" {
		t.Errorf("code_challenge_method = %q, want \"S256\"", got)
	}
	if got := q.Get("state"); got != req.Pending.State {
		t.Errorf("state param %q does not match pending state %q", got, req.Pending.State)
	}
	if got := q.Get("nonce"); got != req.Pending.Nonce {
		t.Errorf("nonce param %q does not match pending nonce %q", got, req.Pending.Nonce)
	}
	if got := q.Get("code_challenge"); got != CodeChallenge(req.Pending.CodeVerifier) {
		t.Error("code_challenge is not S256(pending verifier)")
	}
	if req.Pending.RedirectTo != "/quiz" {
		t.Errorf("Pending.RedirectTo = %q, want \"/quiz\"", req.Pending.RedirectTo)
	}
}

func TestBeginAuthorizationFreshValuesPerCall(t *testing.T) {
	p := newFakeProvider(t)
	client := NewClient()
	cfg := testResolvedConfig(p)
	ctx := context.Background()

	first, err := client.BeginAuthorization(ctx, cfg, "/")
	if err != nil {
		t.Fatalf("first BeginAuthorization: %v", err)
	}
	second, err := client.BeginAuthorization(ctx, cfg, "/")
	if err != nil {
		t.Fatalf("second BeginAuthorization: %v", err)
	}

	if first.Pending.State == second.Pending.State {
		t.Error("state reused across authorizations")
	}
	if first.Pending.Nonce == second.Pending.Nonce {
		t.Error("nonce reused across authorizations")
	}
	if first.Pending.CodeVerifier == second.Pending.CodeVerifier {
		t.Error("code verifier reused across authorizations")
	}
}

func TestCompleteAuthorization(t *testing.T) {
	p := newFakeProvider(t)
	client := NewClient()
	cfg := testResolvedConfig(p)

	pending := PendingAuth{State: "state-1", Nonce: "nonce-1", CodeVerifier: "verifier-1"}
	p.idToken = p.issueIDToken(t, cfg.ClientID, pending.Nonce, nil)

	subject, err := client.CompleteAuthorization(context.Background(), cfg, "code-abc", pending)
	if err != nil {
		t.Fatalf("CompleteAuthorization: %v", err)
	}
	if subject != "user-42" {
		t.Errorf("subject = %q, want \"user-42\"", subject)
	}
	if p.tokenCalls != 1 {
		t.Errorf("token endpoint called %d times, want 1", p.tokenCalls)
	}
}

func TestCompleteAuthorizationRejectsNonceMismatch(t *testing.T) {
	p := newFakeProvider(t)
	client := NewClient()
	cfg := testResolvedConfig(p)

	pending := PendingAuth{State: "state-1", Nonce: "nonce-1", CodeVerifier: "verifier-1"}
	p.idToken = p.issueIDToken(t, cfg.ClientID, "a-different-nonce", nil)

	_, err := client.CompleteAuthorization(context.Background(), cfg, "code-abc", pending)
	if err == nil {
		t.Fatal("nonce mismatch accepted")
	}
	if got := StatusFor(err); got != http.StatusUnauthorized {
		t.Errorf("StatusFor = %d, want 401", got)
	}
}

func TestCompleteAuthorizationRejectsExpiredToken(t *testing.T) {
	p := newFakeProvider(t)
	client := NewClient()
	cfg := testResolvedConfig(p)

	pending := PendingAuth{State: "state-1", Nonce: "nonce-1", CodeVerifier: "verifier-1"}
	p.idToken = p.issueIDToken(t, cfg.ClientID, pending.Nonce, map[string]any{
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err := client.CompleteAuthorization(context.Background(), cfg, "code-abc", pending)
	if err == nil {
		t.Fatal("expired token accepted")
	}
	if msg := UserMessage(err); !strings.Contains(msg, "expired") {
		t.Errorf("UserMessage = %q, want an expiry message", msg)
	}
}

func TestCompleteAuthorizationRejectsWrongAudience(t *testing.T) {
	p := newFakeProvider(t)
	client := NewClient()
	cfg := testResolvedConfig(p)

	pending := PendingAuth{State: "state-1", Nonce: "nonce-1", CodeVerifier: "verifier-1"}
	p.idToken = p.issueIDToken(t, "some-other-client", pending.Nonce, nil)

	_, err := client.CompleteAuthorization(context.Background(), cfg, "code-abc", pending)
	if err == nil {
		t.Fatal("wrong-audience token accepted")
	}
	if got := StatusFor(err); got != http.StatusUnauthorized {
		t.Errorf("StatusFor = %d, want 401", got)
	}
}
