package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/splitclaim/internal/models"
)

// toConnectError maps the model error taxonomy onto Connect codes.
// Anything unrecognised is internal.
func toConnectError(err error) error {
	var code connect.Code
	switch {
	case errors.Is(err, models.ErrValidation):
		code = connect.CodeInvalidArgument
	case errors.Is(err, models.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, models.ErrUnauthorized):
		code = connect.CodeUnauthenticated
	case errors.Is(err, models.ErrConflict):
		code = connect.CodeAlreadyExists
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	default:
		code = connect.CodeInternal
	}
	return connect.NewError(code, err)
}
