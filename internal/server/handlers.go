package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/san-kum/algoviz/internal/algo"
	"github.com/san-kum/algoviz/internal/input"
	"github.com/san-kum/algoviz/internal/playback"
	"github.com/san-kum/algoviz/internal/storage"
	"github.com/san-kum/algoviz/internal/trace"
)

const maxBody = 1 << 20

// traceRequest names an input either as text ("5, 3, 8") or as an array.
// Data wins when both are present.
type traceRequest struct {
	Name      string `json:"name,omitempty"`
	Input     string `json:"input,omitempty"`
	Data      []int  `json:"data,omitempty"`
	Algorithm string `json:"algorithm,omitempty"`
	SpeedMs   int64  `json:"speedMs,omitempty"`
}

func (req traceRequest) values() []int {
	if req.Data != nil {
		return req.Data
	}
	return input.Parse(req.Input)
}

// inputValues resolves the request array and answers 400 when it is longer
// than the server accepts.
func (s *Server) inputValues(w http.ResponseWriter, req traceRequest) ([]int, bool) {
	data := req.values()
	if len(data) > s.maxInput {
		writeError(w, http.StatusBadRequest,
			fmt.Errorf("%w: %d values, at most %d", ErrInputTooLong, len(data), s.maxInput))
		return nil, false
	}
	return data, true
}

func (req traceRequest) algorithm() (algo.Algorithm, error) {
	if req.Algorithm == "" {
		return algo.Sorting, nil
	}
	return algo.ParseAlgorithm(req.Algorithm)
}

type traceResponse struct {
	Algorithm algo.Algorithm `json:"algorithm"`
	Input     []int          `json:"input"`
	Stats     trace.Stats    `json:"stats"`
	Steps     trace.Trace    `json:"steps"`
}

type sessionResponse struct {
	ID    string         `json:"id"`
	State playback.State `json:"state"`
}

func (s *Server) handleAlgorithms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.List())
}

func (s *Server) handleSteps(w http.ResponseWriter, r *http.Request) {
	var req traceRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := req.algorithm()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	data, ok := s.inputValues(w, req)
	if !ok {
		return
	}
	steps := algo.Generate(data, a)
	s.metrics.ObserveSteps(a.String(), len(steps))

	writeJSON(w, http.StatusOK, traceResponse{
		Algorithm: a,
		Input:     data,
		Stats:     trace.Summarize(steps),
		Steps:     steps,
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req traceRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := req.algorithm()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	speed := s.speed
	if req.SpeedMs < 0 {
		writeError(w, http.StatusBadRequest, playback.ErrInvalidSpeed)
		return
	}
	if req.SpeedMs > 0 {
		speed = time.Duration(req.SpeedMs) * time.Millisecond
	}

	data, ok := s.inputValues(w, req)
	if !ok {
		return
	}
	id, c, err := s.sessions.Create(data, a, speed)
	if err != nil {
		writeError(w, http.StatusTooManyRequests, err)
		return
	}
	s.metrics.ObserveSteps(a.String(), c.StepCount())
	s.logger.Info("session created", "session", id, "algorithm", a, "steps", c.StepCount())
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id, State: c.Snapshot()})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, *playback.Controller, bool) {
	id := chi.URLParam(r, "id")
	c, err := s.sessions.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return "", nil, false
	}
	return id, c, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, State: c.Snapshot()})
}

func (s *Server) handleSessionSteps(w http.ResponseWriter, r *http.Request) {
	_, c, ok := s.session(w, r)
	if !ok {
		return
	}
	steps := c.Steps()
	writeJSON(w, http.StatusOK, traceResponse{
		Algorithm: c.Algorithm(),
		Input:     c.Snapshot().Input,
		Stats:     trace.Summarize(steps),
		Steps:     steps,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Delete(id); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.logger.Info("session closed", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessionAction(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.session(w, r)
	if !ok {
		return
	}
	switch action := chi.URLParam(r, "action"); action {
	case "play":
		c.Play()
	case "pause":
		c.Pause()
	case "toggle":
		c.Toggle()
	case "forward":
		c.StepForward()
	case "backward":
		c.StepBackward()
	case "reset":
		c.Reset()
	default:
		writeError(w, http.StatusBadRequest, errors.New("unknown action "+action))
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, State: c.Snapshot()})
}

func (s *Server) handleSessionSpeed(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		SpeedMs int64 `json:"speedMs"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := c.SetSpeed(time.Duration(req.SpeedMs) * time.Millisecond); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, State: c.Snapshot()})
}

func (s *Server) handleSessionInput(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.session(w, r)
	if !ok {
		return
	}
	var req traceRequest
	if !decode(w, r, &req) {
		return
	}
	data, ok := s.inputValues(w, req)
	if !ok {
		return
	}
	c.SetData(data)
	s.metrics.ObserveSteps(c.Algorithm().String(), c.StepCount())
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, State: c.Snapshot()})
}

func (s *Server) handleSessionAlgorithm(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.session(w, r)
	if !ok {
		return
	}
	var req traceRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := algo.ParseAlgorithm(req.Algorithm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	c.SetAlgorithm(a)
	s.metrics.ObserveSteps(a.String(), c.StepCount())
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, State: c.Snapshot()})
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("run storage is not configured"))
		return false
	}
	return true
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	runs, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("list runs", "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleSaveRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	var req traceRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := req.algorithm()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	data, ok := s.inputValues(w, req)
	if !ok {
		return
	}
	steps := algo.Generate(data, a)
	s.metrics.ObserveSteps(a.String(), len(steps))

	run := storage.NewRun(req.Name, a, data, steps)
	if _, err := s.store.Save(r.Context(), run); err != nil {
		s.logger.Error("save run", "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, run.Metadata)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	run, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
