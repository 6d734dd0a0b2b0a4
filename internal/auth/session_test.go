package auth_test

import (
	"testing"

	"github.com/history-quiz/historyquiz/internal/auth"
)

func TestSanitizeRedirect(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"internal path", "/quiz", "/quiz"},
		{"internal path with query", "/quiz?prev=abc", "/quiz?prev=abc"},
		{"root", "/", "/"},
		{"empty falls back", "", "/me"},
		{"absolute URL falls back", "https://evil.example/phish", "/me"},
		{"protocol-relative falls back", "//evil.example/phish", "/me"},
		{"no leading slash falls back", "quiz", "/me"},
		{"javascript scheme falls back", "javascript:alert(1)", "/me"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := auth.SanitizeRedirect(tt.in, "/me"); got != tt.want {
				t.Errorf("SanitizeRedirect(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
