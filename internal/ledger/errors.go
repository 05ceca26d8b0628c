// Package ledger defines the error taxonomy shared by the store, the
// transaction engine and the tools built on top of them.
package ledger

import (
	"errors"
	"fmt"
)

// Validation failures. They are always detected before any write is issued.
var (
	ErrInvalidAmount     = errors.New("ledger: invalid amount")
	ErrInvalidSplit      = errors.New("ledger: profit split and tax must total 1")
	ErrInsufficientStock = errors.New("ledger: insufficient stock")
	ErrInvalidAccount    = errors.New("ledger: invalid account")
)

// Lookup and uniqueness failures.
var (
	ErrUnknownAccount   = errors.New("ledger: unknown account")
	ErrUnknownItem      = errors.New("ledger: unknown item")
	ErrDuplicateItem    = errors.New("ledger: item already exists")
	ErrDuplicateAccount = errors.New("ledger: account already exists")
)

var (
	// ErrStorageFailure means the store was unavailable or a transaction could
	// not commit. The operation had no effect.
	ErrStorageFailure = errors.New("ledger: storage failure")

	// ErrStaleReport is returned by a repair whose reconciliation report no
	// longer matches the stored balances.
	ErrStaleReport = errors.New("ledger: reconciliation report is stale")
)

// Storage wraps err as a storage failure unless it already belongs to the
// taxonomy.
func Storage(err error) error {
	if err == nil || IsValidation(err) || IsNotFound(err) || IsConflict(err) ||
		errors.Is(err, ErrStorageFailure) || errors.Is(err, ErrStaleReport) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}

// IsValidation reports whether err is a rejected input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidSplit) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrInvalidAccount)
}

// IsNotFound reports whether err names a missing account or item.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownAccount) || errors.Is(err, ErrUnknownItem)
}

// IsConflict reports whether err is a key collision on creation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateItem) || errors.Is(err, ErrDuplicateAccount)
}
