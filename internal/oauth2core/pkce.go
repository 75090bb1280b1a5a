package oauth2core

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// codeVerifierAlphabet is exactly the RFC 7636 unreserved character set
// allowed in a code_verifier: [A-Za-z0-9-._~].
const codeVerifierAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"

// codeVerifierLength is fixed at 128, the maximum RFC 7636 permits and the
// length this spec requires.
const codeVerifierLength = 128

// GenerateCodeVerifier returns a 128-character code_verifier drawn from
// the PKCE unreserved alphabet.
func GenerateCodeVerifier() string {
	b := make([]byte, codeVerifierLength)
	idx := make([]byte, codeVerifierLength)
	if _, err := rand.Read(idx); err != nil {
		panic("oauth2core: failed to read random bytes: " + err.Error())
	}
	for i, v := range idx {
		b[i] = codeVerifierAlphabet[int(v)%len(codeVerifierAlphabet)]
	}
	return string(b)
}

// GenerateCodeChallenge computes code_challenge = base64url_nopad(SHA-256(verifier)).
func GenerateCodeChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
