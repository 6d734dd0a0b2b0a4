package oidc

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// Raw byte lengths before base64url encoding. 32 bytes is 256 bits of
// entropy; the 48-byte verifier encodes to 64 characters, within RFC 7636's
// 43–128 range.
const (
	stateLength        = 32
	nonceLength        = 32
	codeVerifierLength = 48
)

// randomURLSafe returns n random bytes as an unpadded base64url string.
func randomURLSafe(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// CodeChallenge computes the S256 PKCE challenge for verifier.
func CodeChallenge(verifier string) string {
	h := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(h[:])
}
