package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/algoviz/internal/algo"
	"github.com/san-kum/algoviz/internal/playback"
	"github.com/san-kum/algoviz/internal/storage"
)

func newTestServer(t *testing.T, store storage.Store, opts ...Option) *httptest.Server {
	t.Helper()
	s := New(store, nil, opts...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return ts
}

func do(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestAlgorithms(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, body := do(t, http.MethodGet, ts.URL+"/api/algorithms", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var infos []algo.Info
	require.NoError(t, json.Unmarshal(body, &infos))
	require.Len(t, infos, 4)
	assert.Equal(t, algo.Sorting, infos[0].ID)
	assert.True(t, infos[0].Implemented)
	assert.False(t, infos[2].Implemented)
}

func TestSteps(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := do(t, http.MethodPost, ts.URL+"/api/steps", map[string]any{"input": "2, junk, 1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tr traceResponse
	require.NoError(t, json.Unmarshal(body, &tr))
	assert.Equal(t, []int{2, 1}, tr.Input)
	assert.Len(t, tr.Steps, 5)
	assert.Equal(t, 1, tr.Stats.Swaps)
	assert.True(t, tr.Steps.Equal(algo.Generate([]int{2, 1}, algo.Sorting)))
}

func TestSteps_DataAndAlgorithm(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := do(t, http.MethodPost, ts.URL+"/api/steps",
		map[string]any{"data": []int{3, 1}, "input": "9, 9, 9", "algorithm": "tree"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tr traceResponse
	require.NoError(t, json.Unmarshal(body, &tr))
	assert.Equal(t, []int{3, 1}, tr.Input)
	assert.Len(t, tr.Steps, 1)

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/steps", map[string]any{"algorithm": "quantum"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/steps", strings.NewReader("{"))
	r, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	r.Body.Close()
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)
}

func descending(n int) []int {
	xs := make([]int, n)
	for i := range xs {
		xs[i] = n - i
	}
	return xs
}

func TestInputLengthLimit(t *testing.T) {
	store, err := storage.OpenSQLStore(":memory:", nil)
	require.NoError(t, err)
	defer store.Close()
	ts := newTestServer(t, store)

	long := descending(DefaultMaxInputLen + 1)
	text := strings.Trim(strings.Join(strings.Fields(fmt.Sprint(long)), ","), "[]")

	for _, body := range []map[string]any{{"data": long}, {"input": text}} {
		resp, data := do(t, http.MethodPost, ts.URL+"/api/steps", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(data), "input too long")

		resp, _ = do(t, http.MethodPost, ts.URL+"/api/sessions", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp, _ = do(t, http.MethodPost, ts.URL+"/api/runs", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}

	sr := createSession(t, ts, map[string]any{"data": []int{2, 1}})
	resp, _ := do(t, http.MethodPut, ts.URL+"/api/sessions/"+sr.ID+"/input", map[string]any{"data": long})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, data := do(t, http.MethodGet, ts.URL+"/api/sessions/"+sr.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got sessionResponse
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, []int{2, 1}, got.State.Input, "rejected input must leave the session untouched")

	runs, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/steps", map[string]any{"data": descending(DefaultMaxInputLen)})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInputLengthLimit_Option(t *testing.T) {
	ts := newTestServer(t, nil, WithMaxInputLen(3))

	resp, _ := do(t, http.MethodPost, ts.URL+"/api/steps", map[string]any{"data": []int{4, 3, 2, 1}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = do(t, http.MethodPost, ts.URL+"/api/steps", map[string]any{"data": []int{3, 2, 1}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func createSession(t *testing.T, ts *httptest.Server, body map[string]any) sessionResponse {
	t.Helper()
	resp, data := do(t, http.MethodPost, ts.URL+"/api/sessions", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var sr sessionResponse
	require.NoError(t, json.Unmarshal(data, &sr))
	return sr
}

func sessionAction(t *testing.T, ts *httptest.Server, id, action string) playback.State {
	t.Helper()
	resp, data := do(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/"+action, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var sr sessionResponse
	require.NoError(t, json.Unmarshal(data, &sr))
	return sr.State
}

func TestSessions_Transport(t *testing.T) {
	ts := newTestServer(t, nil)
	sr := createSession(t, ts, map[string]any{"data": []int{1, 2, 3}, "speedMs": 60000})

	assert.NotEmpty(t, sr.ID)
	assert.Equal(t, 0, sr.State.Cursor)
	assert.Equal(t, 4, sr.State.StepCount)
	assert.Equal(t, "idle-at-start", sr.State.PhaseName)
	assert.EqualValues(t, 60000, sr.State.SpeedMs)

	st := sessionAction(t, ts, sr.ID, "forward")
	assert.Equal(t, 1, st.Cursor)
	assert.Equal(t, "idle-mid", st.PhaseName)

	st = sessionAction(t, ts, sr.ID, "backward")
	assert.Equal(t, 0, st.Cursor)

	st = sessionAction(t, ts, sr.ID, "play")
	assert.True(t, st.Playing)
	assert.Equal(t, "playing", st.PhaseName)

	st = sessionAction(t, ts, sr.ID, "forward")
	assert.Equal(t, 0, st.Cursor, "forward is ignored while playing")

	st = sessionAction(t, ts, sr.ID, "pause")
	assert.False(t, st.Playing)

	for range 5 {
		st = sessionAction(t, ts, sr.ID, "forward")
	}
	assert.Equal(t, 3, st.Cursor)
	assert.Equal(t, "idle-at-end", st.PhaseName)

	st = sessionAction(t, ts, sr.ID, "reset")
	assert.Equal(t, 0, st.Cursor)

	resp, _ := do(t, http.MethodPost, ts.URL+"/api/sessions/"+sr.ID+"/dance", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessions_PlaysToEnd(t *testing.T) {
	ts := newTestServer(t, nil)
	sr := createSession(t, ts, map[string]any{"input": "2, 1", "speedMs": 1})
	sessionAction(t, ts, sr.ID, "play")

	assert.Eventually(t, func() bool {
		resp, err := http.Get(ts.URL + "/api/sessions/" + sr.ID)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var got sessionResponse
		if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
			return false
		}
		return !got.State.Playing && got.State.Cursor == 4
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSessions_SpeedInputAlgorithm(t *testing.T) {
	ts := newTestServer(t, nil)
	sr := createSession(t, ts, map[string]any{"data": []int{5, 3, 8, 1}})
	assert.EqualValues(t, playback.DefaultSpeed.Milliseconds(), sr.State.SpeedMs)
	base := ts.URL + "/api/sessions/" + sr.ID

	resp, data := do(t, http.MethodPut, base+"/speed", map[string]any{"speedMs": 100})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got sessionResponse
	require.NoError(t, json.Unmarshal(data, &got))
	assert.EqualValues(t, 100, got.State.SpeedMs)

	resp, _ = do(t, http.MethodPut, base+"/speed", map[string]any{"speedMs": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	sessionAction(t, ts, sr.ID, "forward")
	resp, data = do(t, http.MethodPut, base+"/input", map[string]any{"input": "9, 7"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, []int{9, 7}, got.State.Input)
	assert.Equal(t, 0, got.State.Cursor)
	assert.Equal(t, 5, got.State.StepCount)

	resp, data = do(t, http.MethodPut, base+"/algorithm", map[string]any{"algorithm": "searching"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, algo.Searching, got.State.Algorithm)
	assert.Equal(t, 1, got.State.StepCount)

	resp, _ = do(t, http.MethodPut, base+"/algorithm", map[string]any{"algorithm": "nope"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, data = do(t, http.MethodGet, base+"/steps", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tr traceResponse
	require.NoError(t, json.Unmarshal(data, &tr))
	assert.Len(t, tr.Steps, 1)
}

func TestSessions_Delete(t *testing.T) {
	s := New(nil, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	sr := createSession(t, ts, map[string]any{"data": []int{2, 1}, "speedMs": 60000})
	sessionAction(t, ts, sr.ID, "play")
	assert.Equal(t, 1, s.Sessions().Len())

	resp, _ := do(t, http.MethodDelete, ts.URL+"/api/sessions/"+sr.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, s.Sessions().Len())

	resp, _ = do(t, http.MethodGet, ts.URL+"/api/sessions/"+sr.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = do(t, http.MethodDelete, ts.URL+"/api/sessions/"+sr.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessions_Limit(t *testing.T) {
	ts := newTestServer(t, nil, WithMaxSessions(1))
	createSession(t, ts, map[string]any{"data": []int{1}})
	resp, _ := do(t, http.MethodPost, ts.URL+"/api/sessions", map[string]any{"data": []int{1}})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestRuns(t *testing.T) {
	store, err := storage.OpenSQLStore(":memory:", nil)
	require.NoError(t, err)
	defer store.Close()
	ts := newTestServer(t, store)

	resp, data := do(t, http.MethodPost, ts.URL+"/api/runs", map[string]any{"name": "demo", "input": "3, 2, 1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var meta storage.Metadata
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.NotEmpty(t, meta.ID)
	assert.Equal(t, 3, meta.Stats.Swaps)

	resp, data = do(t, http.MethodGet, ts.URL+"/api/runs", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []storage.Metadata
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "demo", list[0].Name)

	resp, data = do(t, http.MethodGet, ts.URL+"/api/runs/"+meta.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var run storage.Run
	require.NoError(t, json.Unmarshal(data, &run))
	assert.True(t, run.Steps.Equal(algo.Generate([]int{3, 2, 1}, algo.Sorting)))

	resp, _ = do(t, http.MethodDelete, ts.URL+"/api/runs/"+meta.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, http.MethodGet, ts.URL+"/api/runs/"+meta.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRuns_NoStore(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, _ := do(t, http.MethodGet, ts.URL+"/api/runs", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	ts := newTestServer(t, nil)
	do(t, http.MethodPost, ts.URL+"/api/steps", map[string]any{"data": []int{2, 1}})
	createSession(t, ts, map[string]any{"data": []int{1}})

	resp, data := do(t, http.MethodGet, ts.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := string(data)
	assert.Contains(t, body, `algoviz_steps_generated_total{algorithm="sorting"} 6`)
	assert.Contains(t, body, `algoviz_sessions_active 1`)
	assert.Contains(t, body, `algoviz_http_requests_total{code="200",method="POST",route="/api/steps"} 1`)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, data := do(t, http.MethodGet, ts.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(data))
}
