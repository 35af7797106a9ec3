package capture

import "errors"

var (
	// ErrSessionNotFound is returned for unknown or evicted session IDs.
	ErrSessionNotFound = errors.New("capture session not found")

	// ErrStrokeInProgress is returned when an operation needs the pen up
	// but a stroke is active.
	ErrStrokeInProgress = errors.New("a stroke is already in progress")

	// ErrNoActiveStroke is returned when samples arrive or a stroke is ended
	// without a stroke having begun.
	ErrNoActiveStroke = errors.New("no stroke in progress")

	// ErrNothingToUndo is returned by Undo on a session without strokes.
	ErrNothingToUndo = errors.New("nothing to undo")
)

// ErrInvalidCanvas is returned for canvas dimensions out of range.
var ErrInvalidCanvas = errors.New("invalid canvas size")
