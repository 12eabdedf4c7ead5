// Package playback drives a generated trace through a play/pause/step/reset
// transport.
//
// A [Controller] owns the step list, a cursor into it, a playing flag, and
// the delay between automatic advances. While playing it keeps exactly one
// pending timer; every reschedule, pause, reset, regeneration, or Close
// cancels that timer first, and callbacks from a replaced timer are dropped.
//
// Controllers are safe for concurrent use. Timer callbacks run on their own
// goroutines, and OnChange listeners are called without the lock held.
package playback

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/san-kum/algoviz/internal/algo"
	"github.com/san-kum/algoviz/internal/input"
	"github.com/san-kum/algoviz/internal/logging"
	"github.com/san-kum/algoviz/internal/trace"
)

// GenerateFunc builds the step list for an input and algorithm.
type GenerateFunc func(data []int, a algo.Algorithm) trace.Trace

type Controller struct {
	mu        sync.Mutex
	sched     Scheduler
	generate  GenerateFunc
	logger    *slog.Logger
	listeners []func(State)

	data      []int
	algorithm algo.Algorithm
	steps     trace.Trace
	cursor    int
	playing   bool
	speed     time.Duration

	timer  Timer
	epoch  uint64
	closed bool
}

type Option func(*Controller)

func WithScheduler(s Scheduler) Option { return func(c *Controller) { c.sched = s } }

func WithGenerator(g GenerateFunc) Option { return func(c *Controller) { c.generate = g } }

func WithLogger(l *slog.Logger) Option { return func(c *Controller) { c.logger = l } }

// WithSpeed sets the initial delay. Non-positive values are ignored.
func WithSpeed(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.speed = d
		}
	}
}

// New builds a session for data under a and positions it at the first step.
func New(data []int, a algo.Algorithm, opts ...Option) *Controller {
	c := &Controller{
		sched:     SystemScheduler,
		generate:  algo.Generate,
		speed:     DefaultSpeed,
		algorithm: a,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrDiscard(c.logger)
	c.data = slices.Clone(data)
	if c.data == nil {
		c.data = []int{}
	}
	c.steps = c.generate(c.data, c.algorithm)
	return c
}

// OnChange registers fn to receive the state after every change.
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Play starts automatic advance. From the last step it restarts at the
// first. It does nothing with one step or fewer, or while already playing.
func (c *Controller) Play() {
	c.update(func() bool {
		if c.playing || len(c.steps) <= 1 {
			return false
		}
		if c.cursor >= len(c.steps)-1 {
			c.cursor = 0
		}
		c.playing = true
		c.scheduleLocked()
		c.logger.Debug("play", "cursor", c.cursor, "steps", len(c.steps), "speed", c.speed)
		return true
	})
}

// Pause stops automatic advance and keeps the cursor where it is.
func (c *Controller) Pause() {
	c.update(func() bool {
		if !c.playing {
			return false
		}
		c.cancelLocked()
		c.playing = false
		c.logger.Debug("pause", "cursor", c.cursor)
		return true
	})
}

// Toggle pauses while playing and plays otherwise.
func (c *Controller) Toggle() {
	if c.Playing() {
		c.Pause()
		return
	}
	c.Play()
}

func (c *Controller) StepForward() {
	c.update(func() bool {
		if c.playing || c.cursor >= len(c.steps)-1 {
			return false
		}
		c.cursor++
		return true
	})
}

func (c *Controller) StepBackward() {
	c.update(func() bool {
		if c.playing || c.cursor <= 0 {
			return false
		}
		c.cursor--
		return true
	})
}

// Reset rewinds to the first step and stops playing.
func (c *Controller) Reset() {
	c.update(func() bool {
		c.resetLocked()
		return true
	})
}

// SetSpeed changes the delay used for the next scheduled advance. A tick
// already pending keeps the delay it was scheduled with.
func (c *Controller) SetSpeed(d time.Duration) error {
	if d <= 0 {
		return ErrInvalidSpeed
	}
	err := ErrClosed
	c.update(func() bool {
		err = nil
		if c.speed == d {
			return false
		}
		c.speed = d
		return true
	})
	return err
}

// SetInput parses raw as comma-separated integers and regenerates the steps.
// Unparseable tokens are dropped.
func (c *Controller) SetInput(raw string) {
	c.SetData(input.Parse(raw))
}

// SetData replaces the input array, regenerates the steps, and resets.
func (c *Controller) SetData(data []int) {
	data = slices.Clone(data)
	if data == nil {
		data = []int{}
	}
	c.update(func() bool {
		c.data = data
		c.rebuildLocked()
		return true
	})
}

// SetAlgorithm switches the algorithm, regenerates the steps, and resets.
func (c *Controller) SetAlgorithm(a algo.Algorithm) {
	c.update(func() bool {
		c.algorithm = a
		c.rebuildLocked()
		return true
	})
}

// Close cancels any pending advance. Later transport calls are no-ops.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.cancelLocked()
	c.playing = false
	c.closed = true
	c.listeners = nil
}

func (c *Controller) Current() trace.Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.steps.At(c.cursor)
}

func (c *Controller) Cursor() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

func (c *Controller) StepCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.steps)
}

func (c *Controller) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

func (c *Controller) Speed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return phaseOf(c.playing, c.cursor, len(c.steps))
}

func (c *Controller) Algorithm() algo.Algorithm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.algorithm
}

// Steps returns a deep copy of the current step list.
func (c *Controller) Steps() trace.Trace {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.steps.Clone()
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// update runs fn under the lock and notifies listeners if fn reports a
// change.
func (c *Controller) update(fn func() bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	changed := fn()
	var (
		st        State
		listeners []func(State)
	)
	if changed {
		st = c.stateLocked()
		listeners = slices.Clone(c.listeners)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(st)
	}
}

func (c *Controller) tick(epoch uint64) {
	c.update(func() bool {
		if epoch != c.epoch || !c.playing {
			return false
		}
		c.timer = nil
		last := len(c.steps) - 1
		if c.cursor >= last {
			c.cursor = last
			c.playing = false
			c.logger.Debug("reached end", "cursor", c.cursor)
			return true
		}
		c.cursor++
		c.scheduleLocked()
		return true
	})
}

func (c *Controller) scheduleLocked() {
	c.cancelLocked()
	epoch := c.epoch
	c.timer = c.sched.AfterFunc(c.speed, func() { c.tick(epoch) })
}

// cancelLocked stops the pending timer and invalidates any callback that
// already escaped it.
func (c *Controller) cancelLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.epoch++
}

func (c *Controller) resetLocked() {
	c.cancelLocked()
	c.cursor = 0
	c.playing = false
}

func (c *Controller) rebuildLocked() {
	c.cancelLocked()
	c.steps = c.generate(c.data, c.algorithm)
	c.resetLocked()
	c.logger.Debug("steps regenerated", "algorithm", c.algorithm, "len", len(c.data), "steps", len(c.steps))
}

func (c *Controller) stateLocked() State {
	phase := phaseOf(c.playing, c.cursor, len(c.steps))
	return State{
		Step:      c.steps.At(c.cursor),
		Cursor:    c.cursor,
		StepCount: len(c.steps),
		Playing:   c.playing,
		Phase:     phase,
		PhaseName: phase.String(),
		Speed:     c.speed,
		SpeedMs:   c.speed.Milliseconds(),
		Algorithm: c.algorithm,
		Input:     slices.Clone(c.data),
	}
}
