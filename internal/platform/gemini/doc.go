// Package gemini implements the external handwriting assessor on Google's
// Gemini API.
//
// An attempt is rendered with the export renderer (color-coded, numbered
// strokes on white), sent together with a prompt that carries the character,
// the expected and drawn stroke counts, the color legend and the per-stroke
// pen sensor summary, and the JSON reply is turned into
// domain.HandwritingFeedback.
//
// Transient API failures are retried with exponential backoff and jitter.
// Blocked content and malformed responses are permanent and fail at once.
// Replies that are not JSON degrade to their leading text with a neutral
// rating instead of failing.
package gemini
