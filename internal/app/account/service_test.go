package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestPasswordHashAndVerify(t *testing.T) {
	h, err := hashPassword("supersecurepass")
	if err != nil {
		t.Fatalf("hashPassword err: %v", err)
	}
	ok, err := verifyPassword(h, "supersecurepass")
	if err != nil || !ok {
		t.Fatalf("expected verification success, got %v %v", ok, err)
	}
	ok, err = verifyPassword(h, "wrong-pass")
	if err != nil || ok {
		t.Fatalf("expected verification failure, got %v %v", ok, err)
	}
	if _, err := verifyPassword("$bcrypt$nope", "x"); err == nil {
		t.Fatal("expected error for foreign hash format")
	}
}

func TestTokenIssueAndParse(t *testing.T) {
	s := NewService(nil, "secret", time.Hour, zerolog.Nop())
	acct := Account{ID: uuid.New(), Email: "player@example.com", DisplayName: "player"}
	tok, err := s.issueToken(acct)
	if err != nil {
		t.Fatalf("issueToken err: %v", err)
	}
	parsed, err := s.ParseToken(tok)
	if err != nil {
		t.Fatalf("ParseToken err: %v", err)
	}
	if parsed != acct.ID {
		t.Fatalf("parsed id mismatch: got %v want %v", parsed, acct.ID)
	}

	other := NewService(nil, "other-secret", time.Hour, zerolog.Nop())
	if _, err := other.ParseToken(tok); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for foreign secret, got %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	s := NewService(nil, "secret", -time.Minute, zerolog.Nop())
	tok, err := s.issueToken(Account{ID: uuid.New(), Email: "a@b.io"})
	if err != nil {
		t.Fatalf("issueToken err: %v", err)
	}
	if _, err := s.ParseToken(tok); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestTokenWithoutIssuerRejected(t *testing.T) {
	s := NewService(nil, "secret", time.Hour, zerolog.Nop())
	claims := jwt.RegisteredClaims{Subject: uuid.NewString(), ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if _, err := s.ParseToken(tok); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	s := NewService(nil, "secret", time.Hour, zerolog.Nop())
	for _, email := range []string{"not-an-email", "@example.com", "a@b", "a@@b.io", "a b@c.io"} {
		if _, err := s.Register(context.Background(), email, "", "supersecurepass"); !errors.Is(err, ErrInvalidEmail) {
			t.Fatalf("Register(%q) expected ErrInvalidEmail, got %v", email, err)
		}
	}
	if _, err := s.Register(context.Background(), "player@example.com", "", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}
