package jwtauth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIssueVerify_RoundTrip(t *testing.T) {
	v := New("test-secret", time.Hour)

	token, err := v.Issue("user-1", "ana@example.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	c, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if c.UserID != "user-1" || c.Email != "ana@example.com" {
		t.Fatalf("unexpected claims: %#v", c)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := New("secret-a", time.Hour)
	verifier := New("secret-b", time.Hour)

	token, err := issuer.Issue("user-1", "")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := verifier.Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	v := New("test-secret", time.Hour)

	past := time.Now().Add(-2 * time.Hour)
	v.now = func() time.Time { return past }
	token, err := v.Issue("user-1", "")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	v.now = time.Now
	if _, err := v.Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	v := New("test-secret", time.Hour)

	if _, err := v.Verify(context.Background(), "not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
