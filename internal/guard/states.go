package guard

import (
	"github.com/enetx/g"

	"github.com/maxhimmel/fsm"
	"github.com/maxhimmel/fsm/sense"
)

type machine = fsm.Machine[StateID, Stimulus]

// base binds a state to the guard that owns its machine.
type base struct {
	fsm.Nop[StateID, Stimulus]
	guard *Guard
}

func (b *base) Initialize(m *machine) {
	b.guard = fsm.OwnerOf[*Guard](m).UnwrapOrDefault()
}

// idleState stands still, then resumes the patrol.
type idleState struct {
	base
	waited int
}

func (s *idleState) Enter(*machine, g.Option[StateID], Stimulus) { s.waited = 0 }

func (s *idleState) Update(m *machine) {
	s.waited++

	if s.waited >= s.guard.cfg.IdleTicks && s.guard.home() == Patrol {
		_ = m.QueueState(Patrol)
	}
}

// patrolState walks the waypoint loop and rests at every waypoint. The next
// waypoint survives leaving the state, so a patrol resumes where it stopped.
type patrolState struct {
	base
	next int
}

func (s *patrolState) Update(m *machine) {
	wps := s.guard.cfg.Waypoints
	if len(wps) == 0 {
		_ = m.QueueState(Idle)
		return
	}

	if s.guard.moveTowards(wps[s.next%len(wps)], s.guard.cfg.Speed) {
		s.next = (s.next + 1) % len(wps)
		_ = m.QueueState(Idle)
	}
}

func (s *patrolState) LateUpdate(*machine) { s.guard.faceMovement() }

// investigateState walks to a stimulus and looks around before heading home.
type investigateState struct {
	base
	spot     sense.Vec3
	searched int
}

func (s *investigateState) Enter(_ *machine, _ g.Option[StateID], ctx Stimulus) {
	s.spot = ctx.Position
	s.searched = 0
	s.guard.lead = ctx
}

func (s *investigateState) Update(m *machine) {
	if !s.guard.moveTowards(s.spot, s.guard.cfg.Speed) {
		return
	}

	s.searched++
	s.guard.facing = s.guard.facing.RotateY(lookAround)

	if s.searched >= s.guard.cfg.SearchTicks {
		_ = m.QueueState(s.guard.home())
	}
}

func (s *investigateState) LateUpdate(*machine) { s.guard.faceMovement() }

func (s *investigateState) Exit(*machine, g.Option[StateID]) { s.guard.lead = Stimulus{} }

// alertState chases the target. Once it has been out of sight for LoseTicks the
// guard investigates where it was last known to be.
type alertState struct {
	base
	lastKnown sense.Vec3
	lost      int
}

func (s *alertState) Enter(_ *machine, _ g.Option[StateID], ctx Stimulus) {
	s.lastKnown = ctx.Position
	s.lost = 0
}

func (s *alertState) Update(m *machine) {
	if s.guard.sighting.IsSome() {
		s.lastKnown = s.guard.sighting.Some()
		s.lost = 0
	} else {
		s.lost++
	}

	if s.lost >= s.guard.cfg.LoseTicks {
		_ = m.QueueState(Investigate, Stimulus{
			Position:    s.lastKnown,
			AlertFactor: s.guard.cfg.AlertThreshold,
		})

		return
	}

	s.guard.moveTowards(s.lastKnown, s.guard.cfg.Speed*chaseFactor)
}

func (s *alertState) LateUpdate(*machine) {
	if s.guard.sighting.IsSome() {
		s.guard.faceTowards(s.guard.sighting.Some())
		return
	}

	s.guard.faceMovement()
}

func (s *alertState) Exit(*machine, g.Option[StateID]) { s.guard.suspicion = 0 }

func (s *alertState) track(p sense.Vec3) { s.lastKnown = p }
