package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrInvalidConfig is returned when the assessor configuration is invalid.
	ErrInvalidConfig = errors.New("invalid assessor configuration")

	// ErrInvalidResponse is returned when the model response is empty or malformed.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model blocks the request due to safety filters.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned once retries of temporary errors are exhausted.
	ErrTransientFailure = errors.New("transient error during assessment")

	// ErrEmptyImage is returned when an attempt has no strokes to render.
	ErrEmptyImage = errors.New("attempt has no strokes to assess")
)
