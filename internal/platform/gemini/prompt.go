package gemini

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/phrazzld/kanji-ink/internal/domain"
	"github.com/phrazzld/kanji-ink/internal/domain/ending"
	"github.com/phrazzld/kanji-ink/internal/ink"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var promptTemplate = template.Must(template.ParseFS(promptFS, "prompts/assessment.tmpl"))

// promptData represents the data passed to the prompt template
type promptData struct {
	Character       string
	ExpectedStrokes int
	DrawnStrokes    int
	Legend          string
	Japanese        bool
	Strokes         []strokeSummary
}

// strokeSummary is the sensor digest of one drawn stroke.
type strokeSummary struct {
	Number int
	Color  string
	domain.StrokeStats
	Samples int
	Ending  string
}

// buildPrompt renders the assessment prompt for attempt in language.
func buildPrompt(attempt domain.Attempt, language string) (string, error) {
	legend := ink.Legend(len(attempt.Strokes))
	parts := make([]string, len(legend))
	for i, entry := range legend {
		parts[i] = fmt.Sprintf("stroke %d = %s", entry.Stroke, entry.Color)
	}

	summaries := make([]strokeSummary, len(attempt.Strokes))
	for i, stroke := range attempt.Strokes {
		summaries[i] = strokeSummary{
			Number:      i + 1,
			Color:       legend[i].Color,
			StrokeStats: domain.StatsOf(stroke),
			Samples:     stroke.Len(),
			Ending:      describeEnding(ending.Detect(stroke)),
		}
	}

	expected := attempt.ExpectedStrokes
	if expected <= 0 {
		expected = len(attempt.Strokes)
	}

	var buf bytes.Buffer
	err := promptTemplate.Execute(&buf, promptData{
		Character:       attempt.Character,
		ExpectedStrokes: expected,
		DrawnStrokes:    len(attempt.Strokes),
		Legend:          strings.Join(parts, ", "),
		Japanese:        language == "ja",
		Strokes:         summaries,
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

func describeEnding(r ending.Result) string {
	if r.Type == ending.Unknown {
		return string(ending.Unknown)
	}
	return fmt.Sprintf("%s (confidence %.2f)", r.Type, r.Confidence)
}
