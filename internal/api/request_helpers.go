package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/kanji-ink/internal/api/shared"
	"github.com/phrazzld/kanji-ink/internal/domain"
)

// decodeAndValidate decodes the JSON body into v and validates it. On
// failure it writes a 400 response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		HandleValidationError(w, r, err)
		return false
	}
	return true
}

// getPathUUID extracts a UUID from the URL path parameters.
//
// Parameters:
//   - r: The HTTP request
//   - paramName: The name of the path parameter to extract
//
// Returns:
//   - (uuid.UUID, nil): The parsed UUID if valid
//   - (uuid.Nil, error): ErrInvalidRequest if the parameter is missing or malformed
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", ErrInvalidRequest, paramName)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s has invalid format", ErrInvalidRequest, paramName)
	}
	return id, nil
}

// getPathCharacter extracts and unescapes the character path parameter.
func getPathCharacter(r *http.Request) (string, error) {
	character, err := url.PathUnescape(chi.URLParam(r, "character"))
	if err != nil {
		return "", fmt.Errorf("%w: character is not a valid path segment", ErrInvalidRequest)
	}
	if err := domain.ValidateCharacter(character); err != nil {
		return "", err
	}
	return character, nil
}

// getQueryInt parses an optional integer query parameter within [lo, hi].
// A missing parameter yields def.
func getQueryInt(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("%w: %s must be an integer between %d and %d", ErrInvalidRequest, name, lo, hi)
	}
	return v, nil
}

// writePNG writes an encoded PNG image.
func writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
