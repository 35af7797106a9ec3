package api

import (
	"bytes"
	"image/png"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/kanji-ink/internal/capture"
	"github.com/phrazzld/kanji-ink/internal/domain"
)

// createSession starts a session over HTTP and returns its base path.
func (ts *testServer) createSession(t *testing.T, req CreateSessionRequest) string {
	t.Helper()

	w := ts.do(t, http.MethodPost, "/api/sessions", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	state := decodeBody[capture.State](t, w)
	path := "/api/sessions/" + state.ID.String()
	assert.Equal(t, path, w.Header().Get("Location"))
	return path
}

// drawStroke streams one stroke through begin, samples and end and returns
// the committed index.
func (ts *testServer) drawStroke(t *testing.T, path string, samples []domain.StrokeSample) int {
	t.Helper()
	return ts.endStroke(t, path, samples).Index
}

func (ts *testServer) endStroke(t *testing.T, path string, samples []domain.StrokeSample) EndStrokeResponse {
	t.Helper()

	w := ts.do(t, http.MethodPost, path+"/strokes/begin", SampleRequest{Sample: samples[0]})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	w = ts.do(t, http.MethodPost, path+"/strokes/samples", SamplesRequest{Samples: samples[1:]})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	w = ts.do(t, http.MethodPost, path+"/strokes/end", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decodeBody[EndStrokeResponse](t, w)
}

func TestSessionHandlerCreate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantError  string
		wantState  domain.MasteryState
		wantWidth  int
	}{
		{
			name:       "defaults",
			body:       CreateSessionRequest{Character: plusCharacter},
			wantStatus: http.StatusCreated,
			wantState:  domain.MasteryReview,
			wantWidth:  capture.DefaultCanvasSize,
		},
		{
			name:       "explicit state and canvas",
			body:       CreateSessionRequest{Character: plusCharacter, MasteryState: "Learning", CanvasWidth: 300, CanvasHeight: 200},
			wantStatus: http.StatusCreated,
			wantState:  domain.MasteryLearning,
			wantWidth:  300,
		},
		{
			name:       "unknown character",
			body:       CreateSessionRequest{Character: "木"},
			wantStatus: http.StatusNotFound,
			wantError:  "No reference strokes available for this character",
		},
		{
			name:       "bad mastery state",
			body:       CreateSessionRequest{Character: plusCharacter, MasteryState: "expert"},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid mastery state",
		},
		{
			name:       "canvas too large",
			body:       CreateSessionRequest{Character: plusCharacter, CanvasWidth: 5000},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid canvas_width: must be at most 4096",
		},
		{
			name:       "empty body",
			body:       "",
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request format",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ts := newTestServer(t)
			w := ts.do(t, http.MethodPost, "/api/sessions", tc.body)
			require.Equal(t, tc.wantStatus, w.Code, w.Body.String())

			if tc.wantError != "" {
				assert.Equal(t, tc.wantError, errorMessage(t, w))
				assert.Equal(t, 0, ts.manager.Len())
				return
			}
			state := decodeBody[capture.State](t, w)
			assert.Equal(t, plusCharacter, state.Character)
			assert.Equal(t, tc.wantState, state.MasteryState)
			assert.Equal(t, tc.wantWidth, state.CanvasWidth)
			assert.Equal(t, 2, state.ExpectedStrokes)
			assert.Empty(t, state.Strokes)
			assert.Equal(t, 1, ts.manager.Len())
		})
	}
}

func TestSessionHandlerWriteAndSubmit(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	path := ts.createSession(t, CreateSessionRequest{Character: plusCharacter, ShowGuide: true})

	attempt := plusAttempt()
	assert.Equal(t, 0, ts.drawStroke(t, path, attempt[0]))
	assert.Equal(t, 1, ts.drawStroke(t, path, attempt[1]))

	w := ts.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeBody[capture.State](t, w)
	require.Len(t, state.Strokes, 2)
	assert.Equal(t, 20, state.Strokes[0].Samples)
	assert.True(t, state.Strokes[0].Pending, "scoring runs on the worker pool")
	assert.False(t, state.Drawing)
	assert.Equal(t, 2, ts.queue.Len())

	w = ts.do(t, http.MethodPost, path+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeBody[domain.WritingResult](t, w)
	assert.True(t, result.IsCorrect)

	w = ts.do(t, http.MethodGet, path, nil)
	state = decodeBody[capture.State](t, w)
	require.NotNil(t, state.Result)
	assert.Equal(t, result.Quality, state.Result.Quality)
}

func TestSessionHandlerEndStrokeScored(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		prior      int
		want       EndStrokeResponse
		wantQueued int
	}{
		{name: "first reference stroke", want: EndStrokeResponse{Index: 0, Scored: true}, wantQueued: 1},
		{name: "last reference stroke", prior: 1, want: EndStrokeResponse{Index: 1, Scored: true}, wantQueued: 2},
		{name: "extra stroke", prior: 2, want: EndStrokeResponse{Index: 2, Scored: false}, wantQueued: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ts := newTestServer(t)
			path := ts.createSession(t, CreateSessionRequest{Character: plusCharacter})

			attempt := plusAttempt()
			for i := range tc.prior {
				ts.drawStroke(t, path, attempt[i])
			}

			got := ts.endStroke(t, path, line(40, 40, 440, 440, 20))
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantQueued, ts.queue.Len())
		})
	}
}

func TestSessionHandlerStrokeConflicts(t *testing.T) {
	t.Parallel()

	samples := line(40, 220, 440, 220, 5)

	testCases := []struct {
		name       string
		prepare    func(t *testing.T, ts *testServer, path string)
		method     string
		suffix     string
		body       interface{}
		wantStatus int
		wantError  string
	}{
		{
			name:       "samples without stroke",
			method:     http.MethodPost,
			suffix:     "/strokes/samples",
			body:       SamplesRequest{Samples: samples},
			wantStatus: http.StatusConflict,
			wantError:  "No stroke in progress",
		},
		{
			name:       "end without stroke",
			method:     http.MethodPost,
			suffix:     "/strokes/end",
			wantStatus: http.StatusConflict,
			wantError:  "No stroke in progress",
		},
		{
			name:       "cancel without stroke",
			method:     http.MethodPost,
			suffix:     "/strokes/cancel",
			wantStatus: http.StatusConflict,
			wantError:  "No stroke in progress",
		},
		{
			name:       "undo on empty canvas",
			method:     http.MethodPost,
			suffix:     "/undo",
			wantStatus: http.StatusConflict,
			wantError:  "Nothing to undo",
		},
		{
			name: "begin twice",
			prepare: func(t *testing.T, ts *testServer, path string) {
				w := ts.do(t, http.MethodPost, path+"/strokes/begin", SampleRequest{Sample: samples[0]})
				require.Equal(t, http.StatusNoContent, w.Code)
			},
			method:     http.MethodPost,
			suffix:     "/strokes/begin",
			body:       SampleRequest{Sample: samples[0]},
			wantStatus: http.StatusConflict,
			wantError:  "A stroke is already in progress",
		},
		{
			name: "submit while drawing",
			prepare: func(t *testing.T, ts *testServer, path string) {
				w := ts.do(t, http.MethodPost, path+"/strokes/begin", SampleRequest{Sample: samples[0]})
				require.Equal(t, http.StatusNoContent, w.Code)
			},
			method:     http.MethodPost,
			suffix:     "/submit",
			wantStatus: http.StatusConflict,
			wantError:  "A stroke is already in progress",
		},
		{
			name:       "empty sample batch",
			method:     http.MethodPost,
			suffix:     "/strokes/samples",
			body:       SamplesRequest{Samples: []domain.StrokeSample{}},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid samples: must have at least 1 items",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ts := newTestServer(t)
			path := ts.createSession(t, CreateSessionRequest{Character: plusCharacter})
			if tc.prepare != nil {
				tc.prepare(t, ts, path)
			}

			w := ts.do(t, tc.method, path+tc.suffix, tc.body)
			require.Equal(t, tc.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tc.wantError, errorMessage(t, w))
		})
	}
}

func TestSessionHandlerCancelUndoClear(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	path := ts.createSession(t, CreateSessionRequest{Character: plusCharacter})
	attempt := plusAttempt()

	ts.drawStroke(t, path, attempt[0])
	ts.drawStroke(t, path, attempt[1])

	w := ts.do(t, http.MethodPost, path+"/strokes/begin", SampleRequest{Sample: attempt[0][0]})
	require.Equal(t, http.StatusNoContent, w.Code)
	w = ts.do(t, http.MethodPost, path+"/strokes/cancel", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	state := decodeBody[capture.State](t, ts.do(t, http.MethodGet, path, nil))
	assert.False(t, state.Drawing)
	assert.Len(t, state.Strokes, 2)

	w = ts.do(t, http.MethodPost, path+"/undo", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	state = decodeBody[capture.State](t, ts.do(t, http.MethodGet, path, nil))
	assert.Len(t, state.Strokes, 1)

	w = ts.do(t, http.MethodDelete, path+"/strokes", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	state = decodeBody[capture.State](t, ts.do(t, http.MethodGet, path, nil))
	assert.Empty(t, state.Strokes)
}

func TestSessionHandlerFrame(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		query      string
		wantStatus int
		wantWidth  int
		wantHeight int
	}{
		{name: "full size", query: "", wantStatus: http.StatusOK, wantWidth: 400, wantHeight: 200},
		{name: "thumbnail", query: "?size=100", wantStatus: http.StatusOK, wantWidth: 100, wantHeight: 50},
		{name: "size zero", query: "?size=0", wantStatus: http.StatusBadRequest},
		{name: "size not a number", query: "?size=big", wantStatus: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ts := newTestServer(t)
			path := ts.createSession(t, CreateSessionRequest{Character: plusCharacter, CanvasWidth: 400, CanvasHeight: 200})
			ts.drawStroke(t, path, line(20, 100, 380, 100, 20))

			w := ts.do(t, http.MethodGet, path+"/frame.png"+tc.query, nil)
			require.Equal(t, tc.wantStatus, w.Code, w.Body.String())
			if tc.wantStatus != http.StatusOK {
				return
			}

			assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, tc.wantWidth, img.Bounds().Dx())
			assert.Equal(t, tc.wantHeight, img.Bounds().Dy())
		})
	}
}

func TestSessionHandlerLookupErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "malformed id",
			method:     http.MethodGet,
			path:       "/api/sessions/not-a-uuid",
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request",
		},
		{
			name:       "unknown id",
			method:     http.MethodGet,
			path:       "/api/sessions/" + uuid.NewString(),
			wantStatus: http.StatusNotFound,
			wantError:  "Session not found",
		},
		{
			name:       "delete unknown id",
			method:     http.MethodDelete,
			path:       "/api/sessions/" + uuid.NewString(),
			wantStatus: http.StatusNotFound,
			wantError:  "Session not found",
		},
		{
			name:       "frame of unknown id",
			method:     http.MethodGet,
			path:       "/api/sessions/" + uuid.NewString() + "/frame.png",
			wantStatus: http.StatusNotFound,
			wantError:  "Session not found",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ts := newTestServer(t)
			w := ts.do(t, tc.method, tc.path, nil)
			require.Equal(t, tc.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tc.wantError, errorMessage(t, w))
		})
	}
}

func TestSessionHandlerDelete(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	path := ts.createSession(t, CreateSessionRequest{Character: plusCharacter})

	w := ts.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, ts.manager.Len())

	w = ts.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.createSession(t, CreateSessionRequest{Character: plusCharacter})

	w := ts.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[HealthResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Sessions)
	assert.True(t, resp.Assessor)
}
