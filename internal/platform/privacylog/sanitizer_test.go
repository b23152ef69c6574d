package privacylog

import (
	"strings"
	"testing"
)

const (
	testPrivateKey = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	testAddress    = "0x1CBd3b2770909D4e10f157cABC84C7264073C9Ec"
)

func TestRedactPrivateKey(t *testing.T) {
	line := "imported account with key " + testPrivateKey
	got := Redact(line)
	if strings.Contains(got, testPrivateKey[2:]) {
		t.Fatalf("private key survived redaction: %q", got)
	}
	if !strings.Contains(got, "[REDACTED]") {
		t.Fatalf("expected redaction marker, got %q", got)
	}
}

func TestRedactKeepsAddresses(t *testing.T) {
	line := "balance query for " + testAddress
	if got := Redact(line); got != line {
		t.Fatalf("address should survive redaction, got %q", got)
	}
}

func TestRedactUnprefixedKey(t *testing.T) {
	got := Redact("aes key: " + testPrivateKey[2:])
	if strings.Contains(got, testPrivateKey[2:]) {
		t.Fatalf("unprefixed key survived redaction: %q", got)
	}
}

func TestRedactValueSensitiveKeyName(t *testing.T) {
	if got := RedactValue("private_key", "short"); got != "[REDACTED]" {
		t.Fatalf("expected redaction by key name, got %q", got)
	}
	if got := RedactValue("aes_key", "abc"); got != "[REDACTED]" {
		t.Fatalf("expected redaction by key name, got %q", got)
	}
	if got := RedactValue("network", "testnet"); got != "testnet" {
		t.Fatalf("expected plain value, got %q", got)
	}
}

func TestFingerprintStableWithinProcess(t *testing.T) {
	a := Fingerprint("session-1")
	b := Fingerprint("session-1")
	c := Fingerprint("session-2")
	if a == "" || !strings.HasPrefix(a, "fp_") {
		t.Fatalf("unexpected fingerprint %q", a)
	}
	if a != b {
		t.Fatalf("fingerprint not stable: %q vs %q", a, b)
	}
	if a == c {
		t.Fatal("distinct values produced identical fingerprints")
	}
}

func TestFingerprintEmpty(t *testing.T) {
	if got := Fingerprint("  "); got != "" {
		t.Fatalf("expected empty fingerprint, got %q", got)
	}
}
