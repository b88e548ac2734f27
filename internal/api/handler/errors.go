package handler

import (
	"errors"

	"lamah/internal/datastore"
	"lamah/internal/datastore/redis_store"
	"lamah/internal/pkg/limiter"
	"lamah/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
)

// wrapError gives engine errors the errorx kind the response is rendered
// with.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var (
		permErr       *services.PermissionError
		conflictErr   *services.CategoryConflictError
		stateErr      *services.StateError
		validationErr *services.ValidationError
	)
	switch {
	case errors.As(err, &permErr):
		return errorx.Wrap(err, errorx.Authn)
	case errors.As(err, &validationErr):
		return errorx.Wrap(err, errorx.Validation)
	case errors.As(err, &conflictErr), errors.As(err, &stateErr):
		return errorx.Wrap(err, errorx.Invalid)
	case errors.Is(err, datastore.ErrNotFound), errors.Is(err, redis_store.ErrRunNotFound):
		return errorx.Wrap(err, errorx.NotExist)
	case errors.Is(err, limiter.ErrRateLimited):
		return errorx.Wrap(err, errorx.RateLimiting)
	default:
		return errorx.Wrap(err, errorx.Service)
	}
}
