package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMasteryState(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		label    string
		expected MasteryState
		wantErr  bool
	}{
		{name: "new", label: "new", expected: MasteryNew},
		{name: "learning upper case", label: "LEARNING", expected: MasteryLearning},
		{name: "review padded", label: "  review ", expected: MasteryReview},
		{name: "graduated", label: "graduated", expected: MasteryGraduated},
		{name: "empty defaults to review", label: "", expected: MasteryReview},
		{name: "unknown label", label: "mastered", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			state, err := ParseMasteryState(tc.label)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidMasteryState))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, state)
		})
	}
}

func TestStrokeSampleValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, StrokeSample{X: 1, Y: 2, Pressure: 0.5}.Validate())

	err := StrokeSample{X: math.NaN()}.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSample)

	err = StrokeSample{Timestamp: math.Inf(1)}.Validate()
	assert.ErrorIs(t, err, ErrInvalidSample)
}

func TestStrokeSampleClamped(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, StrokeSample{Pressure: 1.7}.Clamped().Pressure)
	assert.Equal(t, 0.0, StrokeSample{Pressure: -0.2}.Clamped().Pressure)
	assert.Equal(t, 0.4, StrokeSample{Pressure: 0.4}.Clamped().Pressure)
}

func TestStrokePoints(t *testing.T) {
	t.Parallel()

	strokes := []Stroke{
		{Samples: []StrokeSample{{X: 1, Y: 2}, {X: 3, Y: 4}}},
		{Samples: []StrokeSample{{X: 5, Y: 6}}},
	}

	points := StrokePoints(strokes)
	require.Len(t, points, 2)
	assert.Equal(t, []Point{{X: 1, Y: 2}, {X: 3, Y: 4}}, points[0])
	assert.Equal(t, []Point{{X: 5, Y: 6}}, points[1])
}

func TestValidateCharacter(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateCharacter("永"))
	assert.ErrorIs(t, ValidateCharacter("   "), ErrEmptyCharacter)
}
