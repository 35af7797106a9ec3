package capture

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/kanji-ink/internal/domain"
	"github.com/phrazzld/kanji-ink/internal/store"
)

func TestManager_Create(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		opts    Options
		wantErr error
		check   func(t *testing.T, state State)
	}{
		{
			name: "defaults",
			opts: Options{Character: "十"},
			check: func(t *testing.T, state State) {
				assert.Equal(t, DefaultCanvasSize, state.CanvasWidth)
				assert.Equal(t, DefaultCanvasSize, state.CanvasHeight)
				assert.Equal(t, domain.MasteryReview, state.MasteryState)
				assert.Equal(t, 2, state.ExpectedStrokes)
				assert.Empty(t, state.Strokes)
			},
		},
		{
			name: "explicit options",
			opts: Options{Character: "十", MasteryState: domain.MasteryNew, CanvasWidth: 300, CanvasHeight: 200},
			check: func(t *testing.T, state State) {
				assert.Equal(t, 300, state.CanvasWidth)
				assert.Equal(t, 200, state.CanvasHeight)
				assert.Equal(t, domain.MasteryNew, state.MasteryState)
			},
		},
		{
			name:    "blank character",
			opts:    Options{Character: "  "},
			wantErr: domain.ErrEmptyCharacter,
		},
		{
			name:    "unknown character",
			opts:    Options{Character: "龍"},
			wantErr: store.ErrReferenceNotFound,
		},
		{
			name:    "negative canvas",
			opts:    Options{Character: "十", CanvasWidth: -1},
			wantErr: ErrInvalidCanvas,
		},
		{
			name:    "oversized canvas",
			opts:    Options{Character: "十", CanvasHeight: MaxCanvasSize + 1},
			wantErr: ErrInvalidCanvas,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			s, err := f.manager.Create(context.Background(), tc.opts)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, 0, f.manager.Len())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, f.manager.Len())
			tc.check(t, s.State())
		})
	}
}

func TestManager_GetAndDelete(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	s := f.session(t)

	got, err := f.manager.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = f.manager.Get(uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, f.manager.Delete(s.ID()))
	assert.ErrorIs(t, f.manager.Delete(s.ID()), ErrSessionNotFound)
	_, err = f.manager.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_EvictIdle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	idle := f.session(t)
	active := f.session(t)

	// Both sessions are fresh, nothing to evict yet.
	assert.Equal(t, 0, f.manager.EvictIdle(time.Now()))

	later := time.Now().Add(DefaultIdleTimeout + time.Minute)
	active.mu.Lock()
	active.lastActive = later
	active.mu.Unlock()

	assert.Equal(t, 1, f.manager.EvictIdle(later))
	_, err := f.manager.Get(idle.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.manager.Get(active.ID())
	assert.NoError(t, err)
}

func TestManager_Run(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		idleTimeout time.Duration
	}{
		{name: "evicts idle sessions", idleTimeout: 20 * time.Millisecond},
		{name: "timeout below sweep floor", idleTimeout: time.Nanosecond},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			refs := &fakeReferences{sets: map[string][][]domain.Point{"十": plusReference()}}
			m := NewManager(refs, &stubQueue{}, nil, ManagerConfig{IdleTimeout: tc.idleTimeout}, testLogger())

			s, err := m.Create(context.Background(), Options{Character: "十"})
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				defer close(done)
				assert.NotPanics(t, func() { m.Run(ctx) })
			}()

			assert.Eventually(t, func() bool {
				_, err := m.Get(s.ID())
				return err != nil
			}, time.Second, 5*time.Millisecond)

			cancel()
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("Run did not return after cancel")
			}
		})
	}
}

func TestManager_RecordFeedback(t *testing.T) {
	t.Parallel()

	feedback := &domain.HandwritingFeedback{Rating: 4, Overall: "Balanced strokes."}

	testCases := []struct {
		name string
		// attempt submits on s and returns the IDs feedback is delivered to.
		attempt      func(t *testing.T, f *fixture, s *Session) (sessionID, attemptID uuid.UUID)
		wantFeedback bool
	}{
		{
			name: "current attempt",
			attempt: func(t *testing.T, f *fixture, s *Session) (uuid.UUID, uuid.UUID) {
				write(t, s, line(40, 200, 440, 200, 10))
				return s.ID(), submit(t, f, s)
			},
			wantFeedback: true,
		},
		{
			name: "unknown session",
			attempt: func(t *testing.T, f *fixture, s *Session) (uuid.UUID, uuid.UUID) {
				write(t, s, line(40, 200, 440, 200, 10))
				return uuid.New(), submit(t, f, s)
			},
		},
		{
			name: "never submitted",
			attempt: func(t *testing.T, f *fixture, s *Session) (uuid.UUID, uuid.UUID) {
				write(t, s, line(40, 200, 440, 200, 10))
				return s.ID(), uuid.Nil
			},
		},
		{
			name: "cleared and redrawn after submit",
			attempt: func(t *testing.T, f *fixture, s *Session) (uuid.UUID, uuid.UUID) {
				write(t, s, line(40, 200, 440, 200, 10))
				write(t, s, line(240, 20, 240, 420, 10))
				stale := submit(t, f, s)
				s.Clear()
				write(t, s, line(40, 200, 440, 200, 10))
				return s.ID(), stale
			},
		},
		{
			name: "resubmitted",
			attempt: func(t *testing.T, f *fixture, s *Session) (uuid.UUID, uuid.UUID) {
				write(t, s, line(40, 200, 440, 200, 10))
				stale := submit(t, f, s)
				submit(t, f, s)
				return s.ID(), stale
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			s := f.session(t)
			sessionID, attemptID := tc.attempt(t, f, s)

			assert.NotPanics(t, func() {
				f.manager.RecordFeedback(sessionID, attemptID, feedback)
			})
			if tc.wantFeedback {
				assert.Equal(t, feedback, s.State().Feedback)
			} else {
				assert.Nil(t, s.State().Feedback)
			}
		})
	}
}
