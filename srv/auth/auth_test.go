package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	s, err := NewService("secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	token, err := s.IssueToken("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	id, err := s.ParseToken(token)
	if err != nil || id != "user-1" {
		t.Fatalf("parse: %q %v", id, err)
	}

	other, _ := NewService("other", time.Hour)
	if _, err := other.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	s, _ := NewService("secret", time.Minute)
	issued := time.Now().Add(-2 * time.Minute)
	s.now = func() time.Time { return issued }
	token, err := s.IssueToken("user-1")
	if err != nil {
		t.Fatal(err)
	}
	s.now = time.Now
	if _, err := s.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}
}

func TestPasswordHash(t *testing.T) {
	s, _ := NewService("secret", 0)
	hash, err := s.HashPassword("hunter22")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "hunter22" || !s.CheckPassword(hash, "hunter22") || s.CheckPassword(hash, "wrong") {
		t.Fatalf("password check misbehaves")
	}
}

func TestBearerToken(t *testing.T) {
	if tok, err := BearerToken("Bearer abc"); err != nil || tok != "abc" {
		t.Fatalf("got %q %v", tok, err)
	}
	for _, h := range []string{"", "Basic abc", "Bearer ", "abc"} {
		if _, err := BearerToken(h); !errors.Is(err, ErrNoToken) {
			t.Fatalf("%q: expected ErrNoToken, got %v", h, err)
		}
	}
}

func TestNewServiceNeedsSecret(t *testing.T) {
	if _, err := NewService("", time.Hour); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}
