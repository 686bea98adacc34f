// Package guard implements a patrolling guard whose behavior is a tick-driven state
// machine. A guard hears noise through a sense.Bus, watches a target with its vision
// cone, and moves between idling, patrolling, investigating and raising the alarm.
//
// A Guard is not safe for concurrent use. Its hearing runs on the goroutine that
// emits noise, so hosts must not emit while the guard is updating.
package guard

import (
	"log/slog"

	"github.com/enetx/g"
	"github.com/google/uuid"

	"github.com/maxhimmel/fsm"
	"github.com/maxhimmel/fsm/internal/logging"
	"github.com/maxhimmel/fsm/sense"
)

// Target reports where the watched entity is.
type Target func() sense.Vec3

// Option configures a Guard.
type Option func(*Guard)

// WithTarget sets the entity the guard looks for.
func WithTarget(t Target) Option {
	return func(gd *Guard) { gd.target = t }
}

// WithLineOfSight sets the occlusion test used by the vision cone.
func WithLineOfSight(los sense.LineOfSight) Option {
	return func(gd *Guard) { gd.los = los }
}

// WithLogger logs every transition of the guard's machine.
func WithLogger(l *slog.Logger) Option {
	return func(gd *Guard) { gd.logger = l }
}

// WithID overrides the generated entity identifier.
func WithID(id uuid.UUID) Option {
	return func(gd *Guard) { gd.id = id }
}

// Guard is a single guard entity.
type Guard struct {
	id  uuid.UUID
	cfg Config

	position sense.Vec3
	facing   sense.Vec3
	velocity sense.Vec3

	suspicion float64
	lead      Stimulus
	sighting  g.Option[sense.Vec3]

	target Target
	los    sense.LineOfSight
	logger *slog.Logger

	machine   *fsm.Machine[StateID, Stimulus]
	sub       *sense.Subscription
	destroyed bool
}

// New creates a guard, subscribes its hearing to bus and queues Idle.
func New(cfg Config, bus *sense.Bus, opts ...Option) *Guard {
	cfg = cfg.withDefaults()

	gd := &Guard{
		id:       uuid.New(),
		cfg:      cfg,
		position: cfg.Position,
		facing:   cfg.Facing.Normalize(),
		sighting: g.None[sense.Vec3](),
	}

	for _, opt := range opts {
		opt(gd)
	}

	var fopts []fsm.Option
	if cfg.HistoryLimit > 0 {
		fopts = append(fopts, fsm.WithHistoryLimit(cfg.HistoryLimit))
	}

	gd.machine = fsm.New[StateID, Stimulus](gd, fopts...).
		RegisterState(Idle, &idleState{}).
		RegisterState(Patrol, &patrolState{}).
		RegisterState(Investigate, &investigateState{}).
		RegisterState(Alert, &alertState{})

	if gd.logger != nil {
		fsm.AttachLogger(gd.machine, gd.logger.With(logging.Entity(gd.id), logging.Name(cfg.Name)))
	}

	hearing := sense.Hearing{Self: gd.id, Radius: cfg.Hearing}
	gd.sub = hearing.Listen(bus, gd.Position, gd.hear)

	_ = gd.machine.QueueState(Idle)

	return gd
}

// Update senses the target, then ticks the machine.
func (gd *Guard) Update() {
	if gd.destroyed {
		return
	}

	gd.suspicion = max(gd.suspicion-gd.cfg.Decay, 0)
	gd.velocity = sense.Vec3{}
	gd.sighting = gd.look()

	if gd.sighting.IsSome() && !gd.machine.IsCurrentOrQueued(Alert) {
		_ = gd.machine.QueueState(Alert, Stimulus{
			Position:    gd.sighting.Some(),
			AlertFactor: gd.cfg.AlertThreshold,
			Seen:        true,
		})
	}

	gd.machine.Update()
}

// LateUpdate runs the current state's LateUpdate.
func (gd *Guard) LateUpdate() {
	if gd.destroyed {
		return
	}

	gd.machine.LateUpdate()
}

// Destroy releases the hearing subscription and shuts the machine down. It is
// idempotent.
func (gd *Guard) Destroy() {
	if gd.destroyed {
		return
	}

	gd.destroyed = true
	gd.sub.Unsubscribe()
	gd.machine.Shutdown()
}

func (gd *Guard) look() g.Option[sense.Vec3] {
	if gd.target == nil {
		return g.None[sense.Vec3]()
	}

	t := gd.target()
	if !gd.cfg.Vision.InSight(gd.position, gd.facing, t, gd.los) {
		return g.None[sense.Vec3]()
	}

	return g.Some(t)
}

// hear reacts to a noise: suspicion past the threshold raises the alarm, anything
// quieter sends the guard to investigate. A louder noise restarts an investigation.
func (gd *Guard) hear(n sense.Noise) {
	if gd.destroyed {
		return
	}

	gd.suspicion += n.AlertFactor

	m := gd.machine
	stim := Stimulus{Source: n.Source, Position: n.Position, AlertFactor: n.AlertFactor}

	switch {
	case m.IsCurrentOrQueued(Alert):
		if a, ok := m.StateOf(Alert).UnwrapOrDefault().(*alertState); ok {
			a.track(n.Position)
		}
	case gd.suspicion >= gd.cfg.AlertThreshold:
		_ = m.QueueState(Alert, stim)
	case m.IsCurrentOrQueued(Investigate):
		if n.AlertFactor > gd.lead.AlertFactor {
			gd.lead = stim
			_ = m.ForceState(Investigate, stim)
		}
	default:
		gd.lead = stim
		_ = m.QueueState(Investigate, stim)
	}
}

// moveTowards steps toward target at speed and reports whether it was reached.
func (gd *Guard) moveTowards(target sense.Vec3, speed float64) bool {
	next, reached := gd.position.MoveTowards(target, speed)
	gd.velocity = next.Sub(gd.position)
	gd.position = next

	return reached
}

func (gd *Guard) faceMovement() {
	if gd.velocity.LenSq() > 0 {
		gd.facing = gd.velocity.Normalize()
	}
}

func (gd *Guard) faceTowards(p sense.Vec3) {
	if d := p.Sub(gd.position); d.LenSq() > 0 {
		gd.facing = d.Normalize()
	}
}

// home is where a guard goes when it has nothing to do.
func (gd *Guard) home() StateID {
	if len(gd.cfg.Waypoints) == 0 {
		return Idle
	}

	return Patrol
}

func (gd *Guard) ID() uuid.UUID { return gd.id }
func (gd *Guard) Name() string { return gd.cfg.Name }
func (gd *Guard) Position() sense.Vec3 { return gd.position }
func (gd *Guard) Facing() sense.Vec3 { return gd.facing }
func (gd *Guard) Suspicion() float64 { return gd.suspicion }
func (gd *Guard) Destroyed() bool { return gd.destroyed }
func (gd *Guard) State() g.Option[StateID] { return gd.machine.Current() }

// Machine exposes the guard's state machine for inspection.
func (gd *Guard) Machine() *fsm.Machine[StateID, Stimulus] { return gd.machine }
