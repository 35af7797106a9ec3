// Package geometry removes translation, scale and sampling density from
// strokes so that a drawn stroke and a reference stroke can be compared point
// by point.
//
// Every routine is total. Degenerate input (empty, a single point, a zero
// extent bounding box) is handled with explicit guards instead of errors, so a
// near-empty mark on the canvas can never crash an evaluation.
package geometry
