package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/limbo/internal/ledger"
)

// toConnectError maps the ledger error taxonomy onto Connect codes.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	switch {
	case errors.Is(err, ledger.ErrInsufficientStock), errors.Is(err, ledger.ErrStaleReport):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case ledger.IsValidation(err):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case ledger.IsNotFound(err):
		return connect.NewError(connect.CodeNotFound, err)
	case ledger.IsConflict(err):
		return connect.NewError(connect.CodeAlreadyExists, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
