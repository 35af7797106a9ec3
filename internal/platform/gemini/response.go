package gemini

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/phrazzld/kanji-ink/internal/domain"
)

const (
	// defaultRating is used when the reply carries no usable rating.
	defaultRating = 3

	// fallbackLength bounds the free text kept from a reply that is not JSON.
	fallbackLength = 200
)

// parseFeedback turns the model's reply into feedback. The JSON object is
// taken from the first '{' to the last '}' so surrounding prose or code
// fences are tolerated. Replies without a parseable object fall back to
// their leading text with the default rating. An empty reply is invalid.
func parseFeedback(text string) (*domain.HandwritingFeedback, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrInvalidResponse)
	}

	var fields map[string]any
	if obj, ok := extractJSON(trimmed); ok && json.Unmarshal([]byte(obj), &fields) == nil {
		return feedbackFromFields(fields), nil
	}

	return &domain.HandwritingFeedback{
		Rating:  defaultRating,
		Overall: truncateRunes(trimmed, fallbackLength),
		Strokes: []string{},
	}, nil
}

func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func feedbackFromFields(fields map[string]any) *domain.HandwritingFeedback {
	rating, ok := intField(fields, "rating")
	if !ok {
		rating = defaultRating
	}

	return &domain.HandwritingFeedback{
		Rating:       domain.ClampRating(rating),
		Overall:      stringField(fields, "overall"),
		Strokes:      stringsField(fields, "strokes"),
		Pressure:     stringField(fields, "pressure"),
		Movement:     stringField(fields, "movement"),
		TomeScore:    scoreField(fields, "tome_score"),
		HaneScore:    scoreField(fields, "hane_score"),
		HaraiScore:   scoreField(fields, "harai_score"),
		BalanceScore: scoreField(fields, "balance_score"),
	}
}

// intField reads an integral number. Fractional numbers are rounded.
func intField(fields map[string]any, key string) (int, bool) {
	v, ok := fields[key].(float64)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	// Out of range conversions are implementation defined.
	v = min(max(v, math.MinInt32), math.MaxInt32)
	return int(math.Round(v)), true
}

// scoreField reads an optional 1..5 technique score.
func scoreField(fields map[string]any, key string) *int {
	v, ok := intField(fields, key)
	if !ok {
		return nil
	}
	score := domain.ClampRating(v)
	return &score
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return strings.TrimSpace(s)
}

// stringsField reads a list of strings, dropping empty and non-string items.
func stringsField(fields map[string]any, key string) []string {
	out := []string{}
	items, _ := fields[key].([]any)
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
