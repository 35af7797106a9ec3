package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/kanji-ink/internal/domain"
	"github.com/phrazzld/kanji-ink/internal/events"
	"github.com/phrazzld/kanji-ink/internal/store"
	"github.com/phrazzld/kanji-ink/internal/task"
)

var errQueueFull = errors.New("queue full")

type fakeReferences struct {
	sets map[string][][]domain.Point
}

func (f *fakeReferences) Get(ctx context.Context, character string) ([][]domain.Point, error) {
	set, ok := f.sets[character]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrReferenceNotFound, character)
	}
	return set, nil
}

type stubQueue struct {
	mu    sync.Mutex
	tasks []task.Task
	err   error
}

func (q *stubQueue) Enqueue(t task.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.tasks = append(q.tasks, t)
	return nil
}

func (q *stubQueue) Close() {}

func (q *stubQueue) queued() []task.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]task.Task(nil), q.tasks...)
}

type recordingHandler struct {
	mu     sync.Mutex
	events []*events.Event
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *recordingHandler) received() []*events.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*events.Event(nil), h.events...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// plusReference is a two stroke "+" on the 109 unit reference grid.
func plusReference() [][]domain.Point {
	return [][]domain.Point{
		{{X: 10, Y: 50}, {X: 30, Y: 50}, {X: 50, Y: 50}, {X: 70, Y: 50}, {X: 90, Y: 50}},
		{{X: 50, Y: 10}, {X: 50, Y: 30}, {X: 50, Y: 50}, {X: 50, Y: 70}, {X: 50, Y: 90}},
	}
}

type fixture struct {
	manager *Manager
	queue   *stubQueue
	handler *recordingHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	queue := &stubQueue{}
	handler := &recordingHandler{}
	emitter := events.NewInMemoryEventEmitter(testLogger())
	emitter.RegisterHandler(handler)

	refs := &fakeReferences{sets: map[string][][]domain.Point{"十": plusReference()}}
	return &fixture{
		manager: NewManager(refs, queue, emitter, ManagerConfig{}, testLogger()),
		queue:   queue,
		handler: handler,
	}
}

func (f *fixture) session(t *testing.T) *Session {
	t.Helper()
	s, err := f.manager.Create(context.Background(), Options{Character: "十"})
	require.NoError(t, err)
	return s
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

// write draws one complete stroke on the session.
func write(t *testing.T, s *Session, samples []domain.StrokeSample) int {
	t.Helper()
	require.NoError(t, s.BeginStroke(samples[0]))
	require.NoError(t, s.AppendSample(samples[1:]...))
	index, _, err := s.EndStroke()
	require.NoError(t, err)
	return index
}

// submit submits the session and returns the attempt ID carried by the
// published event.
func submit(t *testing.T, f *fixture, s *Session) uuid.UUID {
	t.Helper()
	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	received := f.handler.received()
	require.NotEmpty(t, received)
	var payload events.WritingResult
	require.NoError(t, received[len(received)-1].UnmarshalPayload(&payload))
	require.NotEqual(t, uuid.Nil, payload.AttemptID)
	require.Equal(t, s.AttemptID(), payload.AttemptID)
	return payload.AttemptID
}

// runQueued executes every queued task in order.
func runQueued(t *testing.T, q *stubQueue) {
	t.Helper()
	for _, queued := range q.queued() {
		require.NoError(t, queued.Execute(context.Background()))
	}
}

func taskScore(id uuid.UUID, index int) task.StrokeScore {
	return task.StrokeScore{TaskID: id, Index: index}
}
