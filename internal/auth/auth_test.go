package auth

import (
	"strings"
	"testing"
	"time"
)

func TestSigner_RoundTrip(t *testing.T) {
	s := NewSigner("secret")

	token, err := s.Token("shop@example.com")
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	email, ok := s.Verify(token)
	if !ok || email != "shop@example.com" {
		t.Fatalf("Verify = %q, %v, want shop@example.com, true", email, ok)
	}
}

func TestSigner_RejectsTampering(t *testing.T) {
	s := NewSigner("secret")
	token, err := s.Token("shop@example.com")
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	forged, err := NewSigner("other").Token("shop@example.com")
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	parts := strings.Split(token, ".")

	cases := map[string]string{
		"empty":         "",
		"garbage":       "not-a-token",
		"other secret":  forged,
		"no signature":  parts[0] + "." + parts[1] + ".",
		"extra segment": token + ".x",
	}
	for name, tok := range cases {
		if _, ok := s.Verify(tok); ok {
			t.Fatalf("%s: Verify(%q) accepted", name, tok)
		}
	}
}

func TestSigner_RejectsExpired(t *testing.T) {
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSigner("secret")
	s.now = func() time.Time { return issued }

	token, err := s.Token("shop@example.com")
	if err != nil {
		t.Fatalf("Token: %v", err)
	}

	s.now = func() time.Time { return issued.Add(DefaultTTL + time.Minute) }
	if _, ok := s.Verify(token); ok {
		t.Fatalf("expired token accepted")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("12345")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "12345") {
		t.Fatalf("CheckPassword rejected the right password")
	}
	if CheckPassword(hash, "54321") {
		t.Fatalf("CheckPassword accepted the wrong password")
	}
	if CheckPassword("12345", "12345") {
		t.Fatalf("CheckPassword accepted a plain-text stored value")
	}
}
