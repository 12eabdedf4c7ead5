package server

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/algoviz/internal/algo"
	"github.com/san-kum/algoviz/internal/logging"
	"github.com/san-kum/algoviz/internal/playback"
)

var (
	ErrSessionNotFound = errors.New("server: session not found")
	ErrTooManySessions = errors.New("server: too many sessions")
)

const DefaultMaxSessions = 256

// Sessions owns the live playback controllers served over HTTP. Deleting a
// session closes its controller, which cancels any pending tick.
type Sessions struct {
	mu     sync.Mutex
	byID   map[string]*playback.Controller
	max    int
	sched  playback.Scheduler
	logger *slog.Logger

	onCount func(int)
}

func NewSessions(max int, sched playback.Scheduler, logger *slog.Logger) *Sessions {
	if max <= 0 {
		max = DefaultMaxSessions
	}
	if sched == nil {
		sched = playback.SystemScheduler
	}
	return &Sessions{
		byID:   make(map[string]*playback.Controller),
		max:    max,
		sched:  sched,
		logger: logging.OrDiscard(logger),
	}
}

func (s *Sessions) Create(data []int, a algo.Algorithm, speed time.Duration) (string, *playback.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.byID) >= s.max {
		return "", nil, ErrTooManySessions
	}
	id := uuid.NewString()
	c := playback.New(data, a,
		playback.WithScheduler(s.sched),
		playback.WithSpeed(speed),
		playback.WithLogger(s.logger.With("session", id)),
	)
	s.byID[id] = c
	s.countLocked()
	return id, c, nil
}

func (s *Sessions) Get(id string) (*playback.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return c, nil
}

func (s *Sessions) Delete(id string) error {
	s.mu.Lock()
	c, ok := s.byID[id]
	delete(s.byID, id)
	s.countLocked()
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	c.Close()
	return nil
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// CloseAll tears down every session.
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	all := s.byID
	s.byID = make(map[string]*playback.Controller)
	s.countLocked()
	s.mu.Unlock()

	for _, c := range all {
		c.Close()
	}
}

func (s *Sessions) countLocked() {
	if s.onCount != nil {
		s.onCount(len(s.byID))
	}
}
