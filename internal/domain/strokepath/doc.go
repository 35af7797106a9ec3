// Package strokepath parses the canonical vector stroke descriptions of a
// character into ordered point sequences.
//
// The interpreter is intentionally partial. It understands the dialect used by
// the stroke content dataset: an absolute move (M) optionally followed by
// implicit line-to pairs, and cubic Bézier segments in relative (c) and
// absolute (C) form. Any other command letter is skipped. Stroke order in a
// batch is preserved exactly because it encodes the correct writing sequence.
package strokepath
