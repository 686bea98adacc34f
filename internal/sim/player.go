package sim

import (
	"github.com/google/uuid"

	"github.com/maxhimmel/fsm/internal/scenario"
	"github.com/maxhimmel/fsm/sense"
)

// Player is the scripted intruder. It walks its path and makes a footstep noise
// every few ticks while moving.
type Player struct {
	id       uuid.UUID
	position sense.Vec3
	path     []sense.Vec3
	next     int
	speed    float64
	loop     bool

	stepEvery int
	moved     int
	footsteps int
	actuator  sense.Actuator
	done      bool
}

// NewPlayer builds a player from its scenario description. It starts on the first
// point of the path.
func NewPlayer(sp scenario.Player) *Player {
	p := &Player{
		id:        uuid.New(),
		speed:     sp.Speed,
		loop:      sp.Loop,
		stepEvery: sp.StepEvery,
		next:      1,
	}

	for _, pt := range sp.Path {
		p.path = append(p.path, pt.Vec())
	}

	if len(p.path) > 0 {
		p.position = p.path[0]
	}

	p.done = len(p.path) < 2 || p.speed == 0
	p.actuator = sense.NewActuator(p.id, sp.Footstep.Radius, sp.Footstep.AlertFactor)

	return p
}

// Step moves the player one tick along its path and returns how many listeners
// heard its footstep, if it made one.
func (p *Player) Step(bus *sense.Bus) int {
	if p.done {
		return 0
	}

	pos, reached := p.position.MoveTowards(p.path[p.next], p.speed)
	p.position = pos

	if reached {
		p.next++
		if p.next == len(p.path) {
			if p.loop {
				p.next = 0
			} else {
				p.done = true
			}
		}
	}

	p.moved++
	if p.stepEvery <= 0 || p.moved%p.stepEvery != 0 {
		return 0
	}

	p.footsteps++

	return p.actuator.MakeNoise(bus, p.position, -1, -1)
}

func (p *Player) ID() uuid.UUID { return p.id }
func (p *Player) Position() sense.Vec3 { return p.position }
func (p *Player) Done() bool { return p.done }
func (p *Player) Footsteps() int { return p.footsteps }
