// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidSample is returned when a pen sample carries non-finite values.
	ErrInvalidSample = errors.New("invalid stroke sample")

	// ErrInvalidMasteryState is returned when a mastery state label is not recognized.
	ErrInvalidMasteryState = errors.New("invalid mastery state")

	// ErrEmptyCharacter is returned when a character identifier is blank.
	ErrEmptyCharacter = errors.New("character cannot be empty")
)
