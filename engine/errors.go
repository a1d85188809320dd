package engine

import "errors"

// Validation errors: rejected at the entry point, nothing is cached.
var (
	ErrMissingOrganization = errors.New("missing organization id")
	ErrUnknownSourceType   = errors.New("unknown source type")
	ErrUnknownWindow       = errors.New("unknown forecast window")
	ErrEmptyBatch          = errors.New("empty signal batch")
)

// IsValidation reports whether err is a malformed-input error rather
// than a storage failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingOrganization) ||
		errors.Is(err, ErrUnknownSourceType) ||
		errors.Is(err, ErrUnknownWindow) ||
		errors.Is(err, ErrEmptyBatch)
}
