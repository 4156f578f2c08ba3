package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rl1809/sweet-shop/internal/core/domain"
)

func newTestService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService("test-secret", "HS256", time.Hour)
	if err != nil {
		t.Fatalf("NewJWTService failed: %v", err)
	}
	return svc
}

func TestIssueValidate_RoundTrip(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Issue(domain.Identity{Subject: "admin@example.com", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	identity, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if identity.Subject != "admin@example.com" {
		t.Errorf("expected subject admin@example.com, got %s", identity.Subject)
	}
	if identity.Role != domain.RoleAdmin {
		t.Errorf("expected role admin, got %s", identity.Role)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	svc := newTestService(t)
	other, _ := NewJWTService("other-secret", "HS256", time.Hour)

	token, err := other.Issue(domain.Identity{Subject: "u@example.com", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := svc.Validate(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidate_Malformed(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Validate("not-a-token"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidate_Expired(t *testing.T) {
	svc := newTestService(t)

	claims := Claims{
		Role: string(domain.RoleUser),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := svc.Validate(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidate_MissingClaims(t *testing.T) {
	svc := newTestService(t)

	// Signed correctly but without subject or role
	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := svc.Validate(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestNewJWTService_Config(t *testing.T) {
	if _, err := NewJWTService("", "HS256", time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
	if _, err := NewJWTService("secret", "NOPE", time.Hour); err == nil {
		t.Error("expected error for unknown algorithm")
	}
	if _, err := NewJWTService("secret", "RS256", time.Hour); err == nil {
		t.Error("expected error for non-HMAC algorithm")
	}
	if _, err := NewJWTService("secret", "HS256", 0); err == nil {
		t.Error("expected error for zero ttl")
	}
	if _, err := NewJWTService("secret", "HS512", time.Minute); err != nil {
		t.Errorf("expected HS512 to be accepted, got %v", err)
	}
}
