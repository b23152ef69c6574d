// Package privacylog keeps key material out of the diagnostic stream.
//
// Tool handlers move raw private keys and AES onboarding keys through session
// state, so any log line built from handler input or session contents must be
// passed through Redact before it reaches the log writer. Session identifiers
// are fingerprinted rather than printed so operators can correlate breadcrumbs
// across one process lifetime without the log becoming a session-id oracle.
package privacylog

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

const redactedValue = "[REDACTED]"

// bootNonce salts fingerprints so they are stable within one process but
// useless across restarts.
var bootNonce = randomNonce()

var (
	// hexKeyPattern matches 32-byte-or-longer hex blobs, with or without a 0x
	// prefix. Private keys and AES keys are 64 hex chars; matching from 32
	// bytes up also catches truncated copies of either.
	hexKeyPattern = regexp.MustCompile(`(0x)?[0-9a-fA-F]{64,}`)

	sensitiveKeyParts = []string{"private", "secret", "password", "passphrase", "mnemonic", "aes"}
)

// Redact replaces anything in s that looks like key material.
// Account addresses (20-byte hex) survive untouched.
func Redact(s string) string {
	if s == "" {
		return s
	}
	return hexKeyPattern.ReplaceAllString(s, redactedValue)
}

// RedactValue redacts a key/value pair destined for a log line. Values under
// sensitive key names are always redacted regardless of shape.
func RedactValue(key, value string) string {
	lower := strings.ToLower(strings.TrimSpace(key))
	for _, part := range sensitiveKeyParts {
		if strings.Contains(lower, part) {
			return redactedValue
		}
	}
	return Redact(value)
}

// Fingerprint returns a short stable identifier for value, suitable for
// correlating log lines about one session without logging the session id.
func Fingerprint(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(trimmed + "|" + bootNonce))
	return "fp_" + hex.EncodeToString(sum[:8])
}

func randomNonce() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "fallback_nonce"
	}
	return hex.EncodeToString(buf)
}
