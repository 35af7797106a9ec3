// Package scoring compares drawn strokes against a character's reference
// strokes and grades complete writing attempts.
//
// Comparison is order and correspondence sensitive: both strokes are
// normalized into the unit square, resampled to the same point count and
// compared index by index. No rotation, reflection or best-alignment search is
// performed, and strokes of an attempt are paired positionally with the
// reference. The thresholds and quality bands are hand tuned and gate what the
// learner sees as pass or fail.
package scoring
