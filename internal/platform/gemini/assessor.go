package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/phrazzld/kanji-ink/internal/config"
	"github.com/phrazzld/kanji-ink/internal/domain"
	"github.com/phrazzld/kanji-ink/internal/ink"
	"github.com/phrazzld/kanji-ink/internal/redact"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 2 * time.Second
)

// contentGenerator is the slice of the genai client the assessor uses.
// *genai.Models satisfies it.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Assessor implements task.Assessor on the Gemini API.
type Assessor struct {
	logger     *slog.Logger
	generator  contentGenerator
	renderer   *ink.ExportRenderer
	model      string
	language   string
	maxRetries int
	baseDelay  time.Duration
}

// NewAssessor creates an Assessor with a Gemini API client.
//
// Parameters:
//   - ctx: Context for client creation
//   - logger: A structured logger for operation logging
//   - cfg: LLM configuration containing API key, model name, and retry settings
//
// Returns:
//   - A ready Assessor, or an error wrapping ErrInvalidConfig
func NewAssessor(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Assessor, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %s", ErrInvalidConfig, redact.Error(err))
	}

	return newAssessor(logger, client.Models, cfg)
}

func newAssessor(logger *slog.Logger, generator contentGenerator, cfg config.LLMConfig) (*Assessor, error) {
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}

	logger = logger.With(slog.String("component", "gemini_assessor"), slog.String("model", cfg.ModelName))

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		logger.Warn("invalid max retries value, using default", "max_retries", defaultMaxRetries)
		maxRetries = defaultMaxRetries
	}
	baseDelay := time.Duration(cfg.RetryDelaySeconds) * time.Second
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}

	return &Assessor{
		logger:     logger,
		generator:  generator,
		renderer:   ink.NewExportRenderer(ink.ExportSize),
		model:      cfg.ModelName,
		language:   cfg.Language,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}, nil
}

// Assess renders attempt, asks the model to grade it and returns the parsed
// feedback.
func (a *Assessor) Assess(ctx context.Context, attempt domain.Attempt) (*domain.HandwritingFeedback, error) {
	if len(attempt.Strokes) == 0 {
		return nil, ErrEmptyImage
	}

	image, err := a.renderer.RenderBytes(attempt.Strokes, attempt.CanvasWidth, attempt.CanvasHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to render attempt: %w", err)
	}

	prompt, err := buildPrompt(attempt, a.language)
	if err != nil {
		return nil, err
	}

	a.logger.DebugContext(ctx, "assessing attempt",
		"character", attempt.Character,
		"strokes", len(attempt.Strokes),
		"prompt_length", len(prompt),
		"image_bytes", len(image))

	text, err := a.generateWithRetry(ctx, prompt, image)
	if err != nil {
		return nil, err
	}

	feedback, err := parseFeedback(text)
	if err != nil {
		return nil, err
	}

	a.logger.InfoContext(ctx, "attempt assessed",
		"character", attempt.Character,
		"rating", feedback.Rating,
		"stroke_notes", len(feedback.Strokes))
	return feedback, nil
}

// generateWithRetry calls the model with exponential backoff retry logic.
//
// It attempts the call up to maxRetries+1 times, waiting
// baseDelay * 2^attempt * jitter(0.5..1.0) between attempts for transient
// errors. Blocked content and malformed responses are returned immediately.
//
// Parameters:
//   - ctx: Context for cancellation, also observed while waiting
//   - prompt: The rendered prompt text
//   - image: The PNG export of the attempt
//
// Returns:
//   - The concatenated text of the first candidate
//   - An error wrapping ErrContentBlocked, ErrInvalidResponse or ErrTransientFailure
func (a *Assessor) generateWithRetry(ctx context.Context, prompt string, image []byte) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(image, "image/png"),
		}, genai.RoleUser),
	}
	genConfig := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		resp, err := a.generator.GenerateContent(ctx, a.model, contents, genConfig)
		if err == nil {
			text, respErr := responseText(resp)
			if respErr != nil {
				a.logger.WarnContext(ctx, "permanent assessor error, not retrying",
					"attempt", attemptNum, redact.ErrorAttr(respErr))
				return "", respErr
			}
			return text, nil
		}

		a.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum, redact.ErrorAttr(err))

		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", ErrTransientFailure, ctx.Err())
		}
		if attempt >= a.maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d)", ErrTransientFailure, a.maxRetries)
		}

		delay := a.backoff(attempt)
		a.logger.InfoContext(ctx, "retrying after delay",
			"attempt", attemptNum,
			"delay", delay.String())

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return "", fmt.Errorf("%w: %v", ErrTransientFailure, ctx.Err())
		}
	}
}

// backoff returns baseDelay * 2^attempt scaled by a jitter factor in [0.5,1).
func (a *Assessor) backoff(attempt int) time.Duration {
	jitter := 0.5 + rand.Float64()*0.5
	return time.Duration(float64(a.baseDelay) * math.Pow(2, float64(attempt)) * jitter)
}

// responseText extracts the text of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	switch {
	case resp == nil:
		return "", fmt.Errorf("%w: nil response", ErrInvalidResponse)
	case resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "":
		return "", fmt.Errorf("%w: prompt blocked (%s)", ErrContentBlocked, resp.PromptFeedback.BlockReason)
	case len(resp.Candidates) == 0:
		return "", fmt.Errorf("%w: no content generated", ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: content blocked by safety filters", ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}
	return text.String(), nil
}
