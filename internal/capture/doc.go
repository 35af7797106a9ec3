// Package capture owns live writing attempts.
//
// A Session is one attempt at one character: it accepts pen samples for a
// single active stroke, renders them on an ink.Canvas, and hands every
// completed stroke to the worker pool for scoring so the writer can start
// the next stroke immediately. Submitting an attempt validates it as a whole
// and publishes the result as an event. The Manager keeps sessions by ID and
// evicts those left idle.
package capture
