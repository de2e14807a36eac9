package submission

import "errors"

// Error kinds reported by the store and the transition engine. Callers match
// them with errors.Is; the wrapped message carries the detail.
var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("submission not found")
	ErrUnauthorized   = errors.New("role not permitted")
	ErrIllegalState   = errors.New("illegal state for transition")
	ErrAlreadyIssued  = errors.New("credits already issued")
	ErrImmutableField = errors.New("field is immutable")
)
