package playback

import (
	"errors"
	"time"

	"github.com/san-kum/algoviz/internal/algo"
	"github.com/san-kum/algoviz/internal/trace"
)

var (
	ErrInvalidSpeed = errors.New("playback: speed must be positive")
	ErrClosed       = errors.New("playback: controller closed")
)

// DefaultSpeed is the delay between automatic advances.
const DefaultSpeed = 300 * time.Millisecond

// Phase is derived from the playing flag and the cursor position.
type Phase int

const (
	IdleAtStart Phase = iota
	IdleMid
	IdleAtEnd
	Playing
)

func (p Phase) String() string {
	switch p {
	case IdleAtStart:
		return "idle-at-start"
	case IdleMid:
		return "idle-mid"
	case IdleAtEnd:
		return "idle-at-end"
	case Playing:
		return "playing"
	}
	return "unknown"
}

func phaseOf(playing bool, cursor, count int) Phase {
	switch {
	case playing:
		return Playing
	case cursor <= 0:
		// a one-step trace sits here too.
		return IdleAtStart
	case cursor >= count-1:
		return IdleAtEnd
	default:
		return IdleMid
	}
}

// State is a read-only view of a controller at one instant.
type State struct {
	Step      trace.Step     `json:"step"`
	Cursor    int            `json:"cursor"`
	StepCount int            `json:"stepCount"`
	Playing   bool           `json:"playing"`
	Phase     Phase          `json:"-"`
	PhaseName string         `json:"phase"`
	Speed     time.Duration  `json:"-"`
	SpeedMs   int64          `json:"speedMs"`
	Algorithm algo.Algorithm `json:"algorithm"`
	Input     []int          `json:"input"`
}
