package aicache

import (
	"crypto/sha256"
	"encoding/hex"
)

// allSentinel is the invalidate_pattern argument that clears every key.
const allSentinel = "*"

// FingerprintKey computes prompt_hash = hex(SHA-256(prompt || context)),
// the deterministic key for a prompt plus optional context string.
func FingerprintKey(prompt, context string) string {
	h := sha256.New()
	h.Write([]byte(prompt))
	if context != "" {
		h.Write([]byte(context))
	}
	return hex.EncodeToString(h.Sum(nil))
}
