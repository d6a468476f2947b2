// Package credentials implements the shared-secret handling: a reversible
// at-rest obfuscation and the time-boxed reveal guard.
//
// The encoding is NOT encryption. It only keeps the secret out of casual
// view; anyone with store access can decode it. Upgrading it to real
// cryptography would change guarantees the system does not claim.
package credentials

import (
	"encoding/base64"
	"strings"
)

const encodedPrefix = "enc_"

// Encode obfuscates a secret for storage.
func Encode(secret string) string {
	return encodedPrefix + base64.StdEncoding.EncodeToString([]byte(secret))
}

// Decode reverses Encode. Values that were never encoded, or that fail to
// decode, are returned as-is.
func Decode(stored string) string {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, encodedPrefix))
	if err != nil {
		return stored
	}
	return string(raw)
}
