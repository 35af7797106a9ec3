package store

import "context"

// ReferenceStore reads canonical stroke data. Each character maps to its
// stroke paths in writing order, one SVG path data string per stroke.
type ReferenceStore interface {
	// GetStrokePaths returns the stroke paths of a character in stroke
	// order. It returns ErrReferenceNotFound when the character is unknown.
	GetStrokePaths(ctx context.Context, character string) ([]string, error)

	// ListCharacters returns every character with reference strokes, sorted.
	ListCharacters(ctx context.Context) ([]string, error)
}

// ReferenceWriter replaces the stroke paths of a character.
type ReferenceWriter interface {
	// ReplaceStrokePaths atomically replaces all stroke paths of a
	// character. Backends without write support return ErrReadOnly.
	ReplaceStrokePaths(ctx context.Context, character string, paths []string) error
}
