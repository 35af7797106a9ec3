package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/kanji-ink/internal/api/shared"
	"github.com/phrazzld/kanji-ink/internal/capture"
	"github.com/phrazzld/kanji-ink/internal/domain"
	"github.com/phrazzld/kanji-ink/internal/events"
	"github.com/phrazzld/kanji-ink/internal/ink"
	"github.com/phrazzld/kanji-ink/internal/store"
	"github.com/phrazzld/kanji-ink/internal/task"
)

const plusCharacter = "十"

// plusPaths draws "十" on the 109 unit reference grid.
var plusPaths = []string{
	"M 10,50 30,50 50,50 70,50 90,50",
	"M 50,10 50,30 50,50 50,70 50,90",
}

type fakeReferences struct {
	mu          sync.Mutex
	sets        map[string][][]domain.Point
	err         error
	invalidated []string
}

func newFakeReferences() *fakeReferences {
	return &fakeReferences{sets: map[string][][]domain.Point{
		plusCharacter: {
			{{X: 10, Y: 50}, {X: 30, Y: 50}, {X: 50, Y: 50}, {X: 70, Y: 50}, {X: 90, Y: 50}},
			{{X: 50, Y: 10}, {X: 50, Y: 30}, {X: 50, Y: 50}, {X: 50, Y: 70}, {X: 50, Y: 90}},
		},
	}}
}

func (f *fakeReferences) Get(ctx context.Context, character string) ([][]domain.Point, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	set, ok := f.sets[character]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrReferenceNotFound, character)
	}
	return set, nil
}

func (f *fakeReferences) Invalidate(character string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, character)
}

type fakeWriter struct {
	err       error
	character string
	paths     []string
}

func (f *fakeWriter) ReplaceStrokePaths(ctx context.Context, character string, paths []string) error {
	if f.err != nil {
		return f.err
	}
	f.character = character
	f.paths = paths
	return nil
}

type fakeAssessor struct {
	feedback *domain.HandwritingFeedback
	err      error
	attempt  domain.Attempt
}

func (f *fakeAssessor) Assess(ctx context.Context, attempt domain.Attempt) (*domain.HandwritingFeedback, error) {
	f.attempt = attempt
	return f.feedback, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testServer holds a router with every handler mounted over fakes.
type testServer struct {
	router     http.Handler
	references *fakeReferences
	writer     *fakeWriter
	assessor   *fakeAssessor
	manager    *capture.Manager
	queue      *task.TaskQueue
}

type serverOption func(*serverConfig)

type serverConfig struct {
	noWriter   bool
	noAssessor bool
}

func withoutWriter() serverOption   { return func(c *serverConfig) { c.noWriter = true } }
func withoutAssessor() serverOption { return func(c *serverConfig) { c.noAssessor = true } }

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	var cfg serverConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	ts := &testServer{
		references: newFakeReferences(),
		writer:     &fakeWriter{},
		assessor:   &fakeAssessor{feedback: &domain.HandwritingFeedback{Rating: 4, Overall: "Balanced strokes"}},
		queue:      task.NewTaskQueue(100, testLogger()),
	}
	t.Cleanup(ts.queue.Close)

	var writer store.ReferenceWriter = ts.writer
	if cfg.noWriter {
		writer = nil
	}
	var assessor task.Assessor = ts.assessor
	if cfg.noAssessor {
		assessor = nil
	}

	emitter := events.NewInMemoryEventEmitter(testLogger())
	ts.manager = capture.NewManager(ts.references, ts.queue, emitter, capture.ManagerConfig{}, testLogger())

	r := chi.NewRouter()
	Handlers{
		Health:    NewHealthHandler(ts.manager, assessor != nil),
		Reference: NewReferenceHandler(ts.references, writer, testLogger()),
		Writing:   NewWritingHandler(ts.references, ink.NewExportRenderer(128), assessor, testLogger()),
		Sessions:  NewSessionHandler(ts.manager, testLogger()),
	}.Mount(r)
	ts.router = r
	return ts
}

// do sends a request with body encoded as JSON unless it is a string.
func (ts *testServer) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[shared.ErrorResponse](t, w).Error
}

// line samples n points from (x0,y0) to (x1,y1) in canvas coordinates.
func line(x0, y0, x1, y1 float64, n int) []domain.StrokeSample {
	samples := make([]domain.StrokeSample, n)
	for i := range samples {
		f := float64(i) / float64(n-1)
		samples[i] = domain.StrokeSample{
			X:         x0 + (x1-x0)*f,
			Y:         y0 + (y1-y0)*f,
			Pressure:  0.6,
			Altitude:  1.2,
			Timestamp: float64(i) * 0.016,
		}
	}
	return samples
}

// plusAttempt is a correct two stroke "十" on a 512 canvas.
func plusAttempt() [][]domain.StrokeSample {
	return [][]domain.StrokeSample{
		line(40, 220, 440, 220, 20),
		line(240, 20, 240, 420, 20),
	}
}
