package oidc

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// expirySkew is the clock-skew allowance applied to the exp claim.
const expirySkew = 30 * time.Second

// audience is the aud claim, which providers emit as either a string or an
// array of strings.
type audience []string

func (a *audience) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = audience{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*a = audience(many)
	return nil
}

func (a audience) contains(clientID string) bool {
	for _, aud := range a {
		if aud == clientID {
			return true
		}
	}
	return false
}

// Claims is the decoded ID-token payload.
type Claims struct {
	Issuer   string   `json:"iss"`
	Subject  string   `json:"sub"`
	Audience audience `json:"aud"`
	Expiry   int64    `json:"exp"`
	IssuedAt int64    `json:"iat,omitempty"`
	Nonce    string   `json:"nonce,omitempty"`
}

type expectedClaims struct {
	issuer   string
	clientID string
	nonce    string
}

// validateClaims checks the decoded payload against the discovery issuer, the
// client id, the clock, and the nonce issued at authorization start. Each
// rule fails independently with its own message so failures are
// distinguishable in logs.
func (c *Client) validateClaims(claims Claims, want expectedClaims) error {
	if strings.TrimSpace(claims.Subject) == "" {
		return flowError(http.StatusUnauthorized,
			"The identity token carried no subject. Please sign in again.")
	}
	if claims.Issuer != want.issuer {
		return flowError(http.StatusUnauthorized,
			"The identity token's issuer did not match. Please sign in again.")
	}
	if !claims.Audience.contains(want.clientID) {
		return flowError(http.StatusUnauthorized,
			"The identity token's audience did not match. Please sign in again.")
	}
	if claims.Expiry <= c.now().Add(-expirySkew).Unix() {
		return flowError(http.StatusUnauthorized,
			"The identity token has expired. Please sign in again.")
	}
	if claims.Nonce != want.nonce {
		return flowError(http.StatusUnauthorized,
			"The sign-in response could not be tied to this browser. Please sign in again.")
	}
	return nil
}
