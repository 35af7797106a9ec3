package scoring

import "github.com/phrazzld/kanji-ink/internal/domain"

// PassRatio is the fraction of reference strokes that must pass individually
// for an attempt with the right stroke count to count as correct.
const PassRatio = 0.7

// ValidateWriting grades a complete attempt at one character.
//
// Drawn stroke i is paired with reference stroke i; extra or missing strokes
// are not realigned. The attempt is correct only when the stroke counts match
// exactly and at least PassRatio of the reference strokes pass. An empty drawn
// or reference set returns the zero result without scoring anything.
func ValidateWriting(drawn, reference [][]domain.Point, state domain.MasteryState) domain.WritingResult {
	return validate(drawn, reference, ThresholdFor(state))
}

func validate(drawn, reference [][]domain.Point, threshold float64) domain.WritingResult {
	if len(drawn) == 0 || len(reference) == 0 {
		return domain.WritingResult{StrokeResults: []domain.MatchResult{}}
	}

	pairs := min(len(drawn), len(reference))
	results := make([]domain.MatchResult, pairs)

	var total float64
	passed := 0
	for i := 0; i < pairs; i++ {
		results[i] = MatchStroke(drawn[i], reference[i], threshold)
		total += results[i].Similarity
		if results[i].Passed {
			passed++
		}
	}

	overall := total / float64(pairs)
	countMatch := len(drawn) == len(reference)
	isCorrect := countMatch && float64(passed)/float64(len(reference)) >= PassRatio

	return domain.WritingResult{
		StrokeResults:     results,
		OverallSimilarity: overall,
		IsCorrect:         isCorrect,
		Quality:           QualityFor(overall, countMatch, isCorrect),
	}
}

// QualityFor maps an attempt's overall similarity and correctness to the 0-5
// grade consumed by the scheduler.
//
//	>= 0.85 with matching stroke count -> 5
//	>= 0.75 and correct                -> 4
//	>= 0.65 and correct                -> 3
//	correct                            -> 2
//	>= 0.40                            -> 1
//	otherwise                          -> 0
func QualityFor(overall float64, countMatch, isCorrect bool) int {
	switch {
	case overall >= 0.85 && countMatch:
		return 5
	case overall >= 0.75 && isCorrect:
		return 4
	case overall >= 0.65 && isCorrect:
		return 3
	case isCorrect:
		return 2
	case overall >= 0.40:
		return 1
	default:
		return 0
	}
}
