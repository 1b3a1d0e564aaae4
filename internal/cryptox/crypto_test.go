package cryptox

import (
	"strings"
	"testing"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	digest, err := HashPassword("Secret1!")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if digest == "" || digest == "Secret1!" {
		t.Fatalf("digest must be non-empty and not the plaintext")
	}
	if !CheckPassword("Secret1!", digest) {
		t.Fatalf("expected correct password to verify")
	}
	if CheckPassword("wrong", digest) {
		t.Fatalf("expected wrong password to fail verification")
	}
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	a, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	b, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if a == b {
		t.Fatalf("two hashes of the same password must differ (embedded salt)")
	}
}

func TestCheckPassword_MalformedDigest(t *testing.T) {
	if CheckPassword("anything", "not-a-bcrypt-digest") {
		t.Fatalf("malformed digest must never verify")
	}
}

func TestHashToken_DeterministicAndOpaque(t *testing.T) {
	a := HashToken("token-1")
	b := HashToken("token-1")
	c := HashToken("token-2")

	if a != b {
		t.Fatalf("same token must produce the same digest")
	}
	if a == c {
		t.Fatalf("different tokens must produce different digests")
	}
	if strings.Contains(a, "token-1") {
		t.Fatalf("digest must not leak the raw token")
	}
	// sha256 → 32 bytes → 43 chars of unpadded base64url
	if len(a) != 43 {
		t.Fatalf("unexpected digest length: %d", len(a))
	}
}
