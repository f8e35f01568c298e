// Package common defines shared constants and sentinel errors used across
// client layers of medbook. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// ErrRequestFailed is matched by every unsuccessful backend interaction,
	// whether the server answered with an error or could not be reached.
	ErrRequestFailed = errors.New("request failed")

	// ErrMalformedDocument is returned when an imported backup cannot be parsed.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrValidationFailed is matched by client-side form check failures.
	ErrValidationFailed = errors.New("validation failed")

	// ErrNotAuthenticated is returned by operations that need a session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrConfirmationRequired guards destructive operations.
	ErrConfirmationRequired = errors.New("confirmation required")
)
