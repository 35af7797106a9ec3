package domain

// HandwritingFeedback is the qualitative assessment of a writing attempt
// returned by the external assessor. Technique scores are nil when the
// character has no stroke of that ending type.
type HandwritingFeedback struct {
	Rating       int      `json:"rating"`
	Overall      string   `json:"overall"`
	Strokes      []string `json:"strokes"`
	Pressure     string   `json:"pressure,omitempty"`
	Movement     string   `json:"movement,omitempty"`
	TomeScore    *int     `json:"tome_score,omitempty"`
	HaneScore    *int     `json:"hane_score,omitempty"`
	HaraiScore   *int     `json:"harai_score,omitempty"`
	BalanceScore *int     `json:"balance_score,omitempty"`
}

// ClampRating limits a rating to the 1..5 scale.
func ClampRating(r int) int {
	return min(max(r, 1), 5)
}

// Attempt is a completed writing attempt as handed to the assessor.
type Attempt struct {
	Character       string   `json:"character"`
	ExpectedStrokes int      `json:"expected_strokes"`
	Strokes         []Stroke `json:"strokes"`
	CanvasWidth     float64  `json:"canvas_width"`
	CanvasHeight    float64  `json:"canvas_height"`
}
