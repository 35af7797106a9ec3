// Package domain contains the core handwriting entities shared by every stage
// of the writing pipeline: captured pen samples, strokes, reference geometry and
// the results produced when an attempt is scored. It is independent of any
// specific infrastructure or delivery mechanism.
//
// Subpackages hold the algorithms that operate on these types:
//   - strokepath parses canonical vector stroke paths into reference geometry
//   - geometry normalizes and resamples strokes into a comparable frame
//   - scoring compares drawn strokes to the reference and grades attempts
//   - ending classifies how a brush stroke was finished
package domain
