package team

import "github.com/pkg/errors"

// Error kinds returned by the lifecycle engine. Callers match with errors.Is;
// gateway-specific errors never escape this package.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrInvitationExpired = errors.New("invitation expired")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrPersistence       = errors.New("persistence failure")
)

// persistenceErr translates a gateway failure into the engine's taxonomy,
// keeping the original error text for logs.
func persistenceErr(err error, op string) error {
	return errors.Wrapf(ErrPersistence, "%s: %v", op, err)
}
