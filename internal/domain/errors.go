package domain

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrNoSlotsAvailable       = errors.New("no slots available")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvalidTransaction     = errors.New("invalid transaction")
	ErrInvalidAddress         = errors.New("invalid address")
	ErrDuplicateTransaction   = errors.New("duplicate transaction")
	ErrForbidden              = errors.New("forbidden")
	ErrAlreadySubmitted       = errors.New("already submitted")
)

// ValidationError reports bad input; Reason is a stable machine-readable code such as "min_slots".
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Reason
}

func NewValidationError(reason string) error {
	return &ValidationError{Reason: reason}
}

// IsValidation reports whether err is a ValidationError, optionally with the given reason.
func IsValidation(err error, reason string) bool {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	return reason == "" || ve.Reason == reason
}
