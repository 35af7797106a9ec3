package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/kanji-ink/internal/domain"
	"github.com/phrazzld/kanji-ink/internal/domain/scoring"
	"github.com/phrazzld/kanji-ink/internal/events"
	"github.com/phrazzld/kanji-ink/internal/ink"
	"github.com/phrazzld/kanji-ink/internal/task"
)

const (
	// DefaultCanvasSize is used for either dimension when none is given.
	DefaultCanvasSize = 512

	// MaxCanvasSize bounds either canvas dimension.
	MaxCanvasSize = 4096

	// DefaultIdleTimeout is the idle period after which a session is evicted.
	DefaultIdleTimeout = 30 * time.Minute

	minSweepInterval = 10 * time.Millisecond
)

// ReferenceSource resolves a character to its parsed reference strokes.
type ReferenceSource interface {
	Get(ctx context.Context, character string) ([][]domain.Point, error)
}

// Options describe a new session.
type Options struct {
	Character    string
	MasteryState domain.MasteryState
	CanvasWidth  int
	CanvasHeight int
	// ShowGuide draws the reference strokes faintly under the ink.
	ShowGuide bool
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	IdleTimeout time.Duration
}

// Manager is the registry of live sessions.
type Manager struct {
	references  ReferenceSource
	queue       task.TaskQueueWriter
	emitter     events.EventEmitter
	idleTimeout time.Duration
	logger      *slog.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates a Manager. Stroke scoring tasks go to queue and
// submitted attempts are published through emitter.
func NewManager(
	references ReferenceSource,
	queue task.TaskQueueWriter,
	emitter events.EventEmitter,
	config ManagerConfig,
	logger *slog.Logger,
) *Manager {
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = DefaultIdleTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		references:  references,
		queue:       queue,
		emitter:     emitter,
		idleTimeout: config.IdleTimeout,
		logger:      logger.With(slog.String("component", "capture_manager")),
		sessions:    make(map[uuid.UUID]*Session),
	}
}

// Create starts a session for opts.Character. It fails with
// store.ErrReferenceNotFound when the character has no usable reference.
func (m *Manager) Create(ctx context.Context, opts Options) (*Session, error) {
	if err := domain.ValidateCharacter(opts.Character); err != nil {
		return nil, err
	}
	if opts.MasteryState == "" {
		opts.MasteryState = domain.MasteryReview
	}
	width, err := canvasDimension(opts.CanvasWidth)
	if err != nil {
		return nil, err
	}
	height, err := canvasDimension(opts.CanvasHeight)
	if err != nil {
		return nil, err
	}

	reference, err := m.references.Get(ctx, opts.Character)
	if err != nil {
		return nil, err
	}

	canvas := ink.NewCanvas(width, height)
	if opts.ShowGuide {
		canvas.SetGuide(reference)
	}

	id := uuid.New()
	now := time.Now()
	s := &Session{
		id:         id,
		character:  opts.Character,
		state:      opts.MasteryState,
		threshold:  scoring.ThresholdFor(opts.MasteryState),
		reference:  reference,
		createdAt:  now,
		queue:      m.queue,
		emitter:    m.emitter,
		logger:     m.logger.With(slog.String("session_id", id.String()), slog.String("character", opts.Character)),
		canvas:     canvas,
		lastActive: now,
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	s.logger.Info("session created",
		slog.String("mastery_state", string(opts.MasteryState)),
		slog.Int("expected_strokes", len(reference)))
	return s, nil
}

// Get returns the session with id.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete ends the session with id.
func (m *Manager) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// RecordFeedback implements task.FeedbackRecorder. Feedback for a session
// that has since ended, or for an attempt that was cleared, undone or
// resubmitted, is discarded.
func (m *Manager) RecordFeedback(sessionID, attemptID uuid.UUID, feedback *domain.HandwritingFeedback) {
	s, err := m.Get(sessionID)
	if err != nil {
		m.logger.Debug("feedback for ended session discarded", slog.String("session_id", sessionID.String()))
		return
	}
	s.SetFeedback(attemptID, feedback)
}

// EvictIdle removes sessions idle since before now minus the idle timeout
// and returns how many were removed.
func (m *Manager) EvictIdle(now time.Time) int {
	cutoff := now.Add(-m.idleTimeout)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		m.logger.Info("evicted idle sessions", slog.Int("count", evicted), slog.Int("remaining", len(m.sessions)))
	}
	return evicted
}

// Run evicts idle sessions periodically until ctx is cancelled. Sweeps run
// at half the idle timeout, but never more often than minSweepInterval.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(max(m.idleTimeout/2, minSweepInterval))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.EvictIdle(now)
		}
	}
}

func canvasDimension(v int) (int, error) {
	switch {
	case v == 0:
		return DefaultCanvasSize, nil
	case v < 0 || v > MaxCanvasSize:
		return 0, fmt.Errorf("%w: canvas dimension %d outside 1..%d", ErrInvalidCanvas, v, MaxCanvasSize)
	default:
		return v, nil
	}
}

var _ task.FeedbackRecorder = (*Manager)(nil)
