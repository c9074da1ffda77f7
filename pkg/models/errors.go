package models

import "errors"

// ErrInvalidInput is returned for malformed grids, metrics, or uploads.
var ErrInvalidInput = errors.New("invalid input")

// Narrative provider failures. Together they make up the remote-service error
// class; callers degrade to a fallback narrative rather than surfacing them.
var (
	ErrMissingCredentials  = errors.New("narrative provider credentials missing")
	ErrProviderUnavailable = errors.New("narrative provider unavailable")
	ErrInferenceTimeout    = errors.New("narrative inference timeout")
	ErrInvalidResponse     = errors.New("narrative provider returned invalid response")
)
