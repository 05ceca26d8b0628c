package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid operator name or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// OperatorStorage looks up operator password hashes.
type OperatorStorage interface {
	// PasswordHash returns the bcrypt hash for name, or an error if there is
	// no such operator.
	PasswordHash(ctx context.Context, name string) (string, error)
}

// StaticOperators is an OperatorStorage backed by configuration, mapping
// operator name to bcrypt hash.
type StaticOperators map[string]string

// PasswordHash implements OperatorStorage.
func (s StaticOperators) PasswordHash(_ context.Context, name string) (string, error) {
	hash, ok := s[name]
	if !ok || hash == "" {
		return "", fmt.Errorf("unknown operator %q", name)
	}
	return hash, nil
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage OperatorStorage
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage OperatorStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage: storage,
	}
}

// ValidateCredential checks if the password meets minimum requirements.
func ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// HashPassword returns the bcrypt hash to put in the operator configuration.
func HashPassword(password string) (string, error) {
	if err := ValidateCredential(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Authenticate verifies the operator name and password.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, name, credential string) (*Operator, error) {
	hash, err := a.storage.PasswordHash(ctx, name)
	if err != nil {
		// Compare against a dummy hash so unknown names take as long as
		// wrong passwords.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(credential))
		return nil, ErrInvalidCredentials
	}

	// Compare password hash
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &Operator{Name: name}, nil
}

var dummyHash = func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.MinCost)
	return h
}()

// sameName compares operator names in constant time.
func sameName(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
