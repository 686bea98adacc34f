// Package scenario loads the YAML description of a level: the player's scripted
// route and the guards watching it.
package scenario

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/maxhimmel/fsm/sense"
)

//go:embed default.yaml
var defaultScenario []byte

// Point is a position written as a [x, y, z] sequence.
type Point []float64

// Vec converts p to a sense.Vec3.
func (p Point) Vec() sense.Vec3 {
	var v sense.Vec3
	if len(p) > 0 {
		v.X = p[0]
	}
	if len(p) > 1 {
		v.Y = p[1]
	}
	if len(p) > 2 {
		v.Z = p[2]
	}

	return v
}

// Scenario is a decoded scenario file.
type Scenario struct {
	Name   string  `yaml:"name"`
	Player Player  `yaml:"player"`
	Guards []Guard `yaml:"guards"`
}

// Player describes the scripted intruder.
type Player struct {
	Speed    float64 `yaml:"speed"`
	Path     []Point `yaml:"path"`
	Loop     bool    `yaml:"loop"`
	Footstep Noise   `yaml:"footstep"`
	// StepEvery emits a footstep every n ticks while moving.
	StepEvery int `yaml:"step_every"`
}

// Noise configures an actuator.
type Noise struct {
	Radius      float64 `yaml:"radius"`
	AlertFactor float64 `yaml:"alert"`
}

// Guard describes one guard.
type Guard struct {
	Name          string  `yaml:"name"`
	Position      Point   `yaml:"position"`
	Facing        Point   `yaml:"facing"`
	Speed         float64 `yaml:"speed"`
	HearingRadius float64 `yaml:"hearing_radius"`
	Vision        Vision  `yaml:"vision"`
	Waypoints     []Point `yaml:"waypoints"`
	IdleTicks     int     `yaml:"idle_ticks"`
	SearchTicks   int     `yaml:"search_ticks"`
	LoseTicks     int     `yaml:"lose_ticks"`
	// AlertThreshold is the suspicion at which a heard noise turns into an alert.
	AlertThreshold float64 `yaml:"alert_threshold"`
	// Decay is the suspicion lost per tick.
	Decay float64 `yaml:"decay"`
}

// Vision configures a vision cone.
type Vision struct {
	Range       float64 `yaml:"range"`
	FieldOfView float64 `yaml:"fov"`
}

// ErrInvalidScenario is returned when a scenario fails validation.
type ErrInvalidScenario struct {
	Field  string
	Reason string
}

func (e *ErrInvalidScenario) Error() string {
	return fmt.Sprintf("scenario: invalid %s: %s", e.Field, e.Reason)
}

// IsInvalidScenario reports whether err is, or wraps, an *ErrInvalidScenario.
func IsInvalidScenario(err error) bool {
	var e *ErrInvalidScenario
	return errors.As(err, &e)
}

// Default returns the embedded scenario.
func Default() (*Scenario, error) {
	return Parse(defaultScenario)
}

// Load reads and parses the scenario at path. An empty path loads the default.
func Load(path string) (*Scenario, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Validate checks the scenario for values the simulation cannot run with.
func (s *Scenario) Validate() error {
	if len(s.Player.Path) == 0 {
		return &ErrInvalidScenario{Field: "player.path", Reason: "at least one point is required"}
	}

	if s.Player.Speed < 0 {
		return &ErrInvalidScenario{Field: "player.speed", Reason: "must not be negative"}
	}

	for i, p := range s.Player.Path {
		if err := checkPoint(fmt.Sprintf("player.path[%d]", i), p); err != nil {
			return err
		}
	}

	if len(s.Guards) == 0 {
		return &ErrInvalidScenario{Field: "guards", Reason: "at least one guard is required"}
	}

	names := make(map[string]struct{}, len(s.Guards))
	for i, gd := range s.Guards {
		field := fmt.Sprintf("guards[%d]", i)

		if gd.Name == "" {
			return &ErrInvalidScenario{Field: field + ".name", Reason: "must not be empty"}
		}

		if _, dup := names[gd.Name]; dup {
			return &ErrInvalidScenario{Field: field + ".name", Reason: fmt.Sprintf("duplicate guard %q", gd.Name)}
		}
		names[gd.Name] = struct{}{}

		if err := checkPoint(field+".position", gd.Position); err != nil {
			return err
		}

		for j, w := range gd.Waypoints {
			if err := checkPoint(fmt.Sprintf("%s.waypoints[%d]", field, j), w); err != nil {
				return err
			}
		}

		if gd.Speed < 0 || gd.HearingRadius < 0 || gd.Vision.Range < 0 {
			return &ErrInvalidScenario{Field: field, Reason: "speed, hearing_radius and vision.range must not be negative"}
		}
	}

	return nil
}

func checkPoint(field string, p Point) error {
	if len(p) != 3 {
		return &ErrInvalidScenario{Field: field, Reason: fmt.Sprintf("want 3 coordinates, got %d", len(p))}
	}

	return nil
}
