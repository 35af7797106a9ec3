// Package task runs background work off the capture path.
//
// Completed strokes are scored by StrokeScoringTask on a WorkerPool while
// the writer is already drawing the next stroke, and submitted attempts can
// be sent to the external assessor by AssessmentTask. Tasks are queued on a
// bounded TaskQueue; a full queue is reported to the caller rather than
// blocking it.
package task
