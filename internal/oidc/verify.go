package oidc

import (
	"context"
	"crypto"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
)

// tokenHeader is the decoded first segment of an ID token.
type tokenHeader struct {
	Alg string `json:"alg"`
	Kid string `json:"kid,omitempty"`
	Typ string `json:"typ,omitempty"`
}

// signatureAlgorithm is the resolved form of the header's alg value. Only the
// RSASSA-PKCS1-v1_5 family is supported; anything else is rejected at parse
// time rather than left for the crypto call to fail on.
type signatureAlgorithm struct {
	name string
	hash crypto.Hash
}

var supportedAlgorithms = map[string]signatureAlgorithm{
	"RS256": {name: "RS256", hash: crypto.SHA256},
	"RS384": {name: "RS384", hash: crypto.SHA384},
	"RS512": {name: "RS512", hash: crypto.SHA512},
}

func resolveAlgorithm(alg string) (signatureAlgorithm, error) {
	sa, ok := supportedAlgorithms[alg]
	if !ok {
		return signatureAlgorithm{}, flowError(http.StatusUnauthorized,
			"The sign-in provider used an unsupported signature algorithm.")
	}
	return sa, nil
}

// verifyIDToken decodes the three-part token, verifies its signature against
// the provider's JWKS, and returns the decoded claims. Claims are NOT
// validated here; see validateClaims.
func (c *Client) verifyIDToken(ctx context.Context, idToken, jwksURI string) (Claims, error) {
	segments := strings.Split(idToken, ".")
	if len(segments) != 3 {
		return Claims{}, flowError(http.StatusUnauthorized,
			"The identity token was malformed. Please sign in again.")
	}
	encodedHeader, encodedPayload, encodedSignature := segments[0], segments[1], segments[2]

	var header tokenHeader
	if err := decodeSegmentJSON(encodedHeader, &header); err != nil {
		return Claims{}, err
	}
	alg, err := resolveAlgorithm(header.Alg)
	if err != nil {
		return Claims{}, err
	}

	var claims Claims
	if err := decodeSegmentJSON(encodedPayload, &claims); err != nil {
		return Claims{}, err
	}

	signature, err := base64.RawURLEncoding.DecodeString(encodedSignature)
	if err != nil {
		return Claims{}, flowErrorCause(http.StatusUnauthorized,
			"The identity token was malformed. Please sign in again.", err)
	}

	set, err := c.keys(ctx, jwksURI)
	if err != nil {
		return Claims{}, err
	}
	key, err := selectKey(set, header.Kid)
	if err != nil {
		return Claims{}, err
	}
	publicKey, ok := key.Key.(*rsa.PublicKey)
	if !ok {
		return Claims{}, flowError(http.StatusUnauthorized,
			"No verification key is available for this sign-in. Please sign in again.")
	}

	hasher := alg.hash.New()
	hasher.Write([]byte(encodedHeader + "." + encodedPayload))
	if err := rsa.VerifyPKCS1v15(publicKey, alg.hash, hasher.Sum(nil), signature); err != nil {
		return Claims{}, flowErrorCause(http.StatusUnauthorized,
			"The identity token's signature could not be verified. Please sign in again.", err)
	}

	return claims, nil
}

// decodeSegmentJSON base64url-decodes one token segment and unmarshals it.
func decodeSegmentJSON(segment string, v any) error {
	raw, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return flowErrorCause(http.StatusUnauthorized,
			"The identity token was malformed. Please sign in again.", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return flowErrorCause(http.StatusUnauthorized,
			"The identity token was malformed. Please sign in again.", err)
	}
	return nil
}
