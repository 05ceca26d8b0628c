package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPasswordAuthenticator(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	a := NewPasswordAuthenticator(StaticOperators{"admin": hash})
	ctx := context.Background()

	op, err := a.Authenticate(ctx, "admin", "correct horse")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if op.Name != "admin" {
		t.Errorf("operator = %q, want admin", op.Name)
	}

	tests := []struct {
		name     string
		operator string
		password string
	}{
		{"wrong password", "admin", "battery staple"},
		{"unknown operator", "root", "correct horse"},
		{"empty password", "admin", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Authenticate(ctx, tt.operator, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Authenticate() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestHashPassword_Weak(t *testing.T) {
	if _, err := HashPassword("short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("HashPassword() error = %v, want ErrWeakPassword", err)
	}
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret-key-of-reasonable-length", time.Hour)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	token, expires, err := m.Generate(&Operator{Name: "admin"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !expires.Equal(now.Add(time.Hour)) {
		t.Errorf("expires = %v, want %v", expires, now.Add(time.Hour))
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.Operator != "admin" {
		t.Errorf("operator = %q, want admin", claims.Operator)
	}

	other := NewJWTManager("a-different-secret-key", time.Hour)
	other.now = m.now
	if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() with wrong key error = %v, want ErrInvalidToken", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() of expired token error = %v, want ErrInvalidToken", err)
	}

	if _, err := m.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() of garbage error = %v, want ErrInvalidToken", err)
	}
}
