package auth

import (
	"context"
)

// Operator is someone allowed to run admin operations (reconcile, repair,
// expire). Members of the store are ledger accounts, not operators.
type Operator struct {
	Name string
}

// Authenticator defines the interface for operator authentication.
// This abstraction allows swapping between different auth methods (password, passkeys, OAuth, etc.)
// without changing the service layer code.
type Authenticator interface {
	// Authenticate verifies the operator's credentials and returns the
	// operator if successful.
	Authenticate(ctx context.Context, name, credential string) (*Operator, error)
}
