package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/kanji-ink/internal/api/shared"
	"github.com/phrazzld/kanji-ink/internal/capture"
	"github.com/phrazzld/kanji-ink/internal/domain"
	"github.com/phrazzld/kanji-ink/internal/platform/gemini"
	"github.com/phrazzld/kanji-ink/internal/store"
)

var (
	// ErrInvalidRequest is returned for malformed request bodies or parameters.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrAssessorDisabled is returned by the assess endpoint when no
	// assessor is configured.
	ErrAssessorDisabled = errors.New("assessor is not enabled")
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors

	switch {
	// Not found errors
	case errors.Is(err, capture.ErrSessionNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Session state conflicts
	case errors.Is(err, capture.ErrStrokeInProgress),
		errors.Is(err, capture.ErrNoActiveStroke),
		errors.Is(err, capture.ErrNothingToUndo),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.As(err, &validationErrs),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidSample),
		errors.Is(err, domain.ErrInvalidMasteryState),
		errors.Is(err, domain.ErrEmptyCharacter),
		errors.Is(err, capture.ErrInvalidCanvas),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, gemini.ErrEmptyImage):
		return http.StatusBadRequest

	case errors.Is(err, store.ErrReadOnly):
		return http.StatusMethodNotAllowed

	// Assessor errors
	case errors.Is(err, gemini.ErrContentBlocked):
		return http.StatusUnprocessableEntity
	case errors.Is(err, gemini.ErrInvalidResponse),
		errors.Is(err, gemini.ErrTransientFailure):
		return http.StatusBadGateway
	case errors.Is(err, ErrAssessorDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, capture.ErrSessionNotFound):
		return "Session not found"
	case errors.Is(err, store.ErrReferenceNotFound):
		return "No reference strokes available for this character"
	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, capture.ErrStrokeInProgress):
		return "A stroke is already in progress"
	case errors.Is(err, capture.ErrNoActiveStroke):
		return "No stroke in progress"
	case errors.Is(err, capture.ErrNothingToUndo):
		return "Nothing to undo"
	case errors.Is(err, store.ErrDuplicate):
		return "Entity already exists"

	case errors.As(err, &validationErrs):
		return SanitizeValidationError(err)
	case errors.Is(err, domain.ErrInvalidSample):
		return "Invalid stroke sample: all values must be finite"
	case errors.Is(err, domain.ErrInvalidMasteryState):
		return "Invalid mastery state"
	case errors.Is(err, domain.ErrEmptyCharacter):
		return "Character is required"
	case errors.Is(err, capture.ErrInvalidCanvas):
		return fmt.Sprintf("Canvas size must be between 1 and %d", capture.MaxCanvasSize)
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	case errors.Is(err, gemini.ErrEmptyImage):
		return "Attempt has no strokes to assess"
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, domain.ErrValidation):
		return "Invalid request"

	case errors.Is(err, store.ErrReadOnly):
		return "Reference content is read-only"

	case errors.Is(err, gemini.ErrContentBlocked):
		return "The assessor declined to assess this attempt"
	case errors.Is(err, gemini.ErrInvalidResponse), errors.Is(err, gemini.ErrTransientFailure):
		return "The assessor is unavailable"
	case errors.Is(err, ErrAssessorDisabled):
		return "Assessment is not enabled"
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns the first validator failure into a message
// naming the field and the violated rule.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "Validation error"
	}

	fe := validationErrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag(), fe.Param()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag, param string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "must have at least " + param + " items"
	case "max":
		return "must have at most " + param + " items"
	case "gte":
		return "must be at least " + param
	case "lte":
		return "must be at most " + param
	case "oneof":
		return "must be one of " + param
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err and logs the
// full error. A non-empty message overrides the safe message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}

	var opts []shared.ResponseOption
	if status == http.StatusConflict {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// HandleValidationError writes a 400 response for a request that failed
// decoding or validation.
func HandleValidationError(w http.ResponseWriter, r *http.Request, err error) {
	message := "Invalid request format"
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		message = SanitizeValidationError(err)
	case MapErrorToStatusCode(err) == http.StatusBadRequest:
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, message, err)
}
