package guard

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/maxhimmel/fsm/sense"
)

// StateID identifies a guard behavior.
type StateID int

const (
	Idle StateID = iota
	Patrol
	Investigate
	Alert
)

func (s StateID) String() string {
	switch s {
	case Idle:
		return "idle"
	case Patrol:
		return "patrol"
	case Investigate:
		return "investigate"
	case Alert:
		return "alert"
	default:
		return fmt.Sprintf("StateID(%d)", int(s))
	}
}

// Stimulus is the context a guard state is entered with.
type Stimulus struct {
	// Source is the entity that caused the stimulus, or uuid.Nil.
	Source uuid.UUID
	// Position is where the stimulus happened.
	Position sense.Vec3
	// AlertFactor is how loud the stimulus was.
	AlertFactor float64
	// Seen is set when the stimulus came from vision rather than hearing.
	Seen bool
}

// Config describes a guard. Zero tick counts and thresholds select the defaults.
type Config struct {
	Name      string
	Position  sense.Vec3
	Facing    sense.Vec3
	Speed     float64
	Hearing   float64
	Vision    sense.Vision
	Waypoints []sense.Vec3

	IdleTicks   int
	SearchTicks int
	LoseTicks   int

	// AlertThreshold is the suspicion at which a heard noise raises the alarm.
	AlertThreshold float64
	// Decay is the suspicion lost per tick.
	Decay float64

	// HistoryLimit bounds the machine's transition log; zero keeps the fsm default.
	HistoryLimit int
}

const (
	DefaultIdleTicks      = 30
	DefaultSearchTicks    = 45
	DefaultLoseTicks      = 20
	DefaultAlertThreshold = 10.0

	// chaseFactor scales the guard's speed while alerted.
	chaseFactor = 1.5
	// lookAround is how far an investigating guard turns per tick, in degrees.
	lookAround = 6.0
)

func (c Config) withDefaults() Config {
	if c.IdleTicks <= 0 {
		c.IdleTicks = DefaultIdleTicks
	}

	if c.SearchTicks <= 0 {
		c.SearchTicks = DefaultSearchTicks
	}

	if c.LoseTicks <= 0 {
		c.LoseTicks = DefaultLoseTicks
	}

	if c.AlertThreshold <= 0 {
		c.AlertThreshold = DefaultAlertThreshold
	}

	c.Decay = max(c.Decay, 0)

	return c
}
