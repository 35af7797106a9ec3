// Package ink renders captured strokes as pressure-aware ink.
//
// Two rendering paths exist. Canvas is the live path: it stamps overlapping
// ellipses along the active stroke and keeps already committed strokes
// flattened in a cached raster so that each frame only re-renders the stroke
// in progress. ExportRenderer is the export path: it draws every completed
// stroke on a fixed square canvas as a variable-width polyline, one color per
// stroke with a numbered label, so a downstream viewer can recover writing
// order from a flat image.
//
// The brush curves (width, opacity, stamp spacing) are small pure functions
// in brush.go. Strokes with fewer than 2 samples are skipped by both paths.
package ink
