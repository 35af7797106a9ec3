package gemini

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/phrazzld/kanji-ink/internal/config"
	"github.com/phrazzld/kanji-ink/internal/domain"
)

type generateCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

// fakeGenerator replays scripted responses in order; the last one repeats.
type fakeGenerator struct {
	mu        sync.Mutex
	responses []*genai.GenerateContentResponse
	errs      []error
	calls     []generateCall
}

func (f *fakeGenerator) GenerateContent(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := len(f.calls)
	f.calls = append(f.calls, generateCall{model: model, contents: contents, config: config})

	var err error
	if len(f.errs) > 0 {
		err = f.errs[min(i, len(f.errs)-1)]
	}
	if err != nil {
		return nil, err
	}
	return f.responses[min(i, len(f.responses)-1)], nil
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      genai.NewContentFromText(text, genai.RoleModel),
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func testConfig() config.LLMConfig {
	return config.LLMConfig{
		ModelName:  "gemini-2.0-flash",
		MaxRetries: 2,
		Language:   "en",
	}
}

func newTestAssessor(t *testing.T, gen *fakeGenerator, cfg config.LLMConfig) *Assessor {
	t.Helper()
	a, err := newAssessor(slog.New(slog.NewTextHandler(io.Discard, nil)), gen, cfg)
	require.NoError(t, err)
	a.baseDelay = time.Millisecond
	return a
}

func testAttempt() domain.Attempt {
	stroke := func(x0, y0, x1, y1 float64) domain.Stroke {
		samples := make([]domain.StrokeSample, 12)
		for i := range samples {
			f := float64(i) / 11
			samples[i] = domain.StrokeSample{
				X:         x0 + (x1-x0)*f,
				Y:         y0 + (y1-y0)*f,
				Pressure:  0.5,
				Timestamp: float64(i) * 0.02,
			}
		}
		return domain.Stroke{Samples: samples}
	}
	return domain.Attempt{
		Character:       "十",
		ExpectedStrokes: 2,
		Strokes: []domain.Stroke{
			stroke(40, 200, 360, 200),
			stroke(200, 40, 200, 360),
		},
		CanvasWidth:  400,
		CanvasHeight: 400,
	}
}

func TestNewAssessor_InvalidConfig(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := NewAssessor(context.Background(), nil, config.LLMConfig{GeminiAPIKey: "k", ModelName: "m"})
	assert.Error(t, err)

	_, err = NewAssessor(context.Background(), logger, config.LLMConfig{ModelName: "m"})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = newAssessor(logger, &fakeGenerator{}, config.LLMConfig{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewAssessor_Defaults(t *testing.T) {
	t.Parallel()

	a, err := newAssessor(slog.New(slog.NewTextHandler(io.Discard, nil)), &fakeGenerator{}, config.LLMConfig{
		ModelName:  "m",
		MaxRetries: -1,
	})
	require.NoError(t, err)
	assert.Equal(t, defaultMaxRetries, a.maxRetries)
	assert.Equal(t, defaultBaseDelay, a.baseDelay)
}

func TestAssess_Success(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{responses: []*genai.GenerateContentResponse{
		textResponse(`{"rating":4,"overall":"Well balanced.","strokes":["Stroke 2 (blue) ends early."],"tome_score":4,"hane_score":null,"balance_score":5}`),
	}}
	a := newTestAssessor(t, gen, testConfig())

	feedback, err := a.Assess(context.Background(), testAttempt())
	require.NoError(t, err)
	assert.Equal(t, 4, feedback.Rating)
	assert.Equal(t, "Well balanced.", feedback.Overall)
	assert.Equal(t, []string{"Stroke 2 (blue) ends early."}, feedback.Strokes)
	require.NotNil(t, feedback.TomeScore)
	assert.Equal(t, 4, *feedback.TomeScore)
	assert.Nil(t, feedback.HaneScore)
	assert.Nil(t, feedback.HaraiScore)
	require.NotNil(t, feedback.BalanceScore)
	assert.Equal(t, 5, *feedback.BalanceScore)

	require.Equal(t, 1, gen.callCount())
	call := gen.calls[0]
	assert.Equal(t, "gemini-2.0-flash", call.model)
	assert.Equal(t, "application/json", call.config.ResponseMIMEType)

	require.Len(t, call.contents, 1)
	parts := call.contents[0].Parts
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0].Text, "「十」")
	assert.Contains(t, parts[0].Text, "stroke 1 = red, stroke 2 = blue")

	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/png", parts[1].InlineData.MIMEType)
	img, err := png.Decode(bytes.NewReader(parts[1].InlineData.Data))
	require.NoError(t, err)
	assert.Equal(t, 512, img.Bounds().Dx())
}

func TestAssess_EmptyAttempt(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{}
	a := newTestAssessor(t, gen, testConfig())

	_, err := a.Assess(context.Background(), domain.Attempt{Character: "十"})
	assert.ErrorIs(t, err, ErrEmptyImage)
	assert.Equal(t, 0, gen.callCount())
}

func TestAssess_RetriesTransientErrors(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{
		errs:      []error{errors.New("503 unavailable"), errors.New("503 unavailable"), nil},
		responses: []*genai.GenerateContentResponse{textResponse(`{"rating":5,"overall":"Excellent."}`)},
	}
	a := newTestAssessor(t, gen, testConfig())

	feedback, err := a.Assess(context.Background(), testAttempt())
	require.NoError(t, err)
	assert.Equal(t, 5, feedback.Rating)
	assert.Equal(t, 3, gen.callCount())
}

func TestAssess_ExhaustsRetries(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{errs: []error{errors.New("connection reset")}}
	a := newTestAssessor(t, gen, testConfig())

	_, err := a.Assess(context.Background(), testAttempt())
	assert.ErrorIs(t, err, ErrTransientFailure)
	assert.Equal(t, 3, gen.callCount())
}

func TestAssess_PermanentErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		response *genai.GenerateContentResponse
		wantErr  error
	}{
		{
			name:     "nil response",
			response: nil,
			wantErr:  ErrInvalidResponse,
		},
		{
			name:     "no candidates",
			response: &genai.GenerateContentResponse{},
			wantErr:  ErrInvalidResponse,
		},
		{
			name: "no content",
			response: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonStop}},
			},
			wantErr: ErrInvalidResponse,
		},
		{
			name: "safety stop",
			response: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
			},
			wantErr: ErrContentBlocked,
		},
		{
			name: "blocked prompt",
			response: &genai.GenerateContentResponse{
				PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
			},
			wantErr: ErrContentBlocked,
		},
		{
			name:     "empty text",
			response: textResponse("   "),
			wantErr:  ErrInvalidResponse,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			gen := &fakeGenerator{responses: []*genai.GenerateContentResponse{tc.response}}
			a := newTestAssessor(t, gen, testConfig())

			_, err := a.Assess(context.Background(), testAttempt())
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, 1, gen.callCount(), "permanent errors are not retried")
		})
	}
}

func TestAssess_CancelledDuringBackoff(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{errs: []error{errors.New("timeout")}}
	a := newTestAssessor(t, gen, testConfig())
	a.baseDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := a.Assess(ctx, testAttempt())
	assert.ErrorIs(t, err, ErrTransientFailure)
	assert.Equal(t, 1, gen.callCount())
}

func TestBackoffGrowsExponentially(t *testing.T) {
	t.Parallel()

	a := newTestAssessor(t, &fakeGenerator{}, testConfig())
	a.baseDelay = time.Second

	for attempt := 0; attempt < 4; attempt++ {
		full := time.Duration(1<<attempt) * time.Second
		d := a.backoff(attempt)
		assert.GreaterOrEqual(t, d, full/2)
		assert.Less(t, d, full)
	}
}
