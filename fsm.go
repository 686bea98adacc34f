// Package fsm provides a generic, tick-driven finite state machine for entity
// behavior. States are registered under typed identifiers, transitions are queued
// and committed on the next Update, and the machine has an explicit shutdown that
// tears every registered state down. It is built with types and utilities from the
// github.com/enetx/g library.
package fsm

import (
	"fmt"

	"github.com/enetx/g"
)

// DefaultHistoryLimit is the number of committed transitions a machine remembers
// unless WithHistoryLimit says otherwise.
const DefaultHistoryLimit = 32

type settings struct {
	historyLimit int
}

// Option configures a Machine at construction.
type Option func(*settings)

// WithHistoryLimit bounds the transition log returned by History. Zero or a
// negative value disables the log.
func WithHistoryLimit(n int) Option {
	return func(s *settings) { s.historyLimit = max(n, 0) }
}

// New creates a machine for owner. The owner is an opaque back-reference that
// states can retrieve with Owner or OwnerOf; it may be nil.
func New[ID comparable, C any](owner any, opts ...Option) *Machine[ID, C] {
	s := settings{historyLimit: DefaultHistoryLimit}
	for _, opt := range opts {
		opt(&s)
	}

	return &Machine[ID, C]{
		owner:        owner,
		registry:     g.NewMap[ID, State[ID, C]](),
		order:        g.NewSlice[ID](),
		current:      g.None[slot[ID, C]](),
		previous:     g.None[ID](),
		pending:      g.None[request[ID, C]](),
		onTransition: g.NewSlice[TransitionHook[ID]](),
		history:      g.NewSlice[Transition[ID]](),
		historyLimit: s.historyLimit,
		enabled:      true,
	}
}

// Sync returns a thread-safe wrapper around the machine.
func (m *Machine[ID, C]) Sync() *SyncMachine[ID, C] { return &SyncMachine[ID, C]{m: m} }

// RegisterState binds state under id and calls its Initialize. A nil state, or a
// machine that was shut down, is ignored. Registering an id again replaces the bound
// state without notifying the old one.
func (m *Machine[ID, C]) RegisterState(id ID, state State[ID, C]) *Machine[ID, C] {
	if state == nil || m.shutdown {
		return m
	}

	if !m.registry.Contains(id) {
		m.order.Push(id)
	}

	m.registry[id] = state
	state.Initialize(m)

	return m
}

// OnTransition registers a hook run after every committed transition.
func (m *Machine[ID, C]) OnTransition(hook TransitionHook[ID]) *Machine[ID, C] {
	if hook != nil {
		m.onTransition.Push(hook)
	}

	return m
}

// QueueState requests a transition to id on the next Update. The optional ctx is
// delivered to the target's Enter. Queuing the state that is already current is
// dropped on the next Update without calling any callback; use ForceState to
// re-enter it.
//
// It returns *ErrUnregisteredState if id was never registered. After Shutdown it
// does nothing.
func (m *Machine[ID, C]) QueueState(id ID, ctx ...C) error {
	return m.queue(id, false, ctx)
}

// ForceState is QueueState with the force flag set: the transition commits even if
// id is already current, running a full Exit/Enter cycle on the same state.
func (m *Machine[ID, C]) ForceState(id ID, ctx ...C) error {
	return m.queue(id, true, ctx)
}

func (m *Machine[ID, C]) queue(id ID, force bool, ctx []C) error {
	if m.shutdown {
		return nil
	}

	state, ok := m.registry[id]
	if !ok {
		return &ErrUnregisteredState{ID: id}
	}

	m.pending = g.Some(request[ID, C]{
		target: slot[ID, C]{id: id, state: state},
		ctx:    payload(ctx),
		force:  force,
	})

	return nil
}

// Update runs the transition protocol and then the current state's Update.
// It does nothing while the machine is disabled or after Shutdown.
//
// Calling Update or LateUpdate from inside a callback of the same machine panics
// with *ErrReentrantTick. Panics raised by states are not recovered.
func (m *Machine[ID, C]) Update() {
	if !m.enabled || m.shutdown {
		return
	}

	m.beginTick("Update")
	defer m.endTick()

	m.ticks++
	m.transition()

	if m.shutdown || m.current.IsNone() {
		return
	}

	m.current.Some().state.Update(m)
}

// LateUpdate runs the current state's LateUpdate. It does not run the transition
// protocol.
func (m *Machine[ID, C]) LateUpdate() {
	if !m.enabled || m.shutdown {
		return
	}

	m.beginTick("LateUpdate")
	defer m.endTick()

	if m.current.IsNone() {
		return
	}

	m.current.Some().state.LateUpdate(m)
}

func (m *Machine[ID, C]) beginTick(phase string) {
	if m.ticking {
		panic(&ErrReentrantTick{Phase: phase})
	}

	m.ticking = true
}

func (m *Machine[ID, C]) endTick() { m.ticking = false }

// transition commits the pending request, if any. The request stays queued while
// the outgoing state exits and is cleared before the commit, so anything queued from
// Exit is dropped while requests from hooks or Enter wait for the next tick.
func (m *Machine[ID, C]) transition() {
	if m.pending.IsNone() {
		return
	}

	req := m.pending.Some()

	if !req.force && m.isCurrent(req.target.id) {
		m.pending = g.None[request[ID, C]]()
		return
	}

	from := g.None[ID]()
	if m.current.IsSome() {
		cur := m.current.Some()
		from = g.Some(cur.id)

		cur.state.Exit(m, g.Some(req.target.id))
		if m.shutdown {
			return
		}
	}

	m.pending = g.None[request[ID, C]]()
	m.previous = from
	m.current = g.Some(req.target)

	t := Transition[ID]{From: from, To: req.target.id, Forced: req.force, Tick: m.ticks}
	m.record(t)

	for hook := range m.onTransition.Iter() {
		hook(t)
	}

	if m.shutdown {
		return
	}

	req.target.state.Enter(m, from, req.ctx)
}

func (m *Machine[ID, C]) record(t Transition[ID]) {
	if m.historyLimit == 0 {
		return
	}

	m.history.Push(t)
	if n := len(m.history); n > m.historyLimit {
		m.history = m.history[n-m.historyLimit:].Clone()
	}
}

// Shutdown permanently stops the machine. The current state, if any, is exited with
// no successor, then every registered state receives Shutdown in registration
// order and the registry is cleared. Calling Shutdown again does nothing.
func (m *Machine[ID, C]) Shutdown() {
	if m.shutdown {
		return
	}

	m.shutdown = true
	m.enabled = false
	m.pending = g.None[request[ID, C]]()

	if m.current.IsSome() {
		m.current.Some().state.Exit(m, g.None[ID]())
	}

	for id := range m.order.Iter() {
		if state, ok := m.registry[id]; ok {
			state.Shutdown(m)
		}
	}

	m.registry = g.NewMap[ID, State[ID, C]]()
	m.order = g.NewSlice[ID]()
	m.current = g.None[slot[ID, C]]()
	m.previous = g.None[ID]()
	m.history = g.NewSlice[Transition[ID]]()
	m.owner = nil
}

// IsShutdown reports whether Shutdown was called.
func (m *Machine[ID, C]) IsShutdown() bool { return m.shutdown }

// Enabled reports whether Update and LateUpdate run.
func (m *Machine[ID, C]) Enabled() bool { return m.enabled }

// SetEnabled pauses or resumes the machine. It has no effect after Shutdown.
func (m *Machine[ID, C]) SetEnabled(enabled bool) {
	if m.shutdown {
		return
	}

	m.enabled = enabled
}

// Current returns the identifier of the current state.
func (m *Machine[ID, C]) Current() g.Option[ID] { return slotID(m.current) }

// Queued returns the identifier waiting for the next Update.
func (m *Machine[ID, C]) Queued() g.Option[ID] {
	if m.pending.IsNone() {
		return g.None[ID]()
	}

	return g.Some(m.pending.Some().target.id)
}

// Previous returns the identifier that was current before the last transition.
func (m *Machine[ID, C]) Previous() g.Option[ID] { return m.previous }

// IsCurrentOrQueued reports whether id is the current or the queued state.
func (m *Machine[ID, C]) IsCurrentOrQueued(id ID) bool {
	if m.isCurrent(id) {
		return true
	}

	return m.pending.IsSome() && m.pending.Some().target.id == id
}

func (m *Machine[ID, C]) isCurrent(id ID) bool {
	return m.current.IsSome() && m.current.Some().id == id
}

// CurrentInstance returns the current state instance.
func (m *Machine[ID, C]) CurrentInstance() g.Option[State[ID, C]] { return slotState(m.current) }

// QueuedInstance returns the queued state instance.
func (m *Machine[ID, C]) QueuedInstance() g.Option[State[ID, C]] {
	if m.pending.IsNone() {
		return g.None[State[ID, C]]()
	}

	return g.Some(m.pending.Some().target.state)
}

// StateOf returns the instance registered under id.
func (m *Machine[ID, C]) StateOf(id ID) g.Option[State[ID, C]] {
	if m.shutdown {
		return g.None[State[ID, C]]()
	}

	return m.registry.Get(id)
}

// States returns the registered identifiers in registration order.
func (m *Machine[ID, C]) States() g.Slice[ID] { return m.order.Clone() }

// History returns a copy of the most recent committed transitions, oldest first.
// It is empty after Shutdown.
func (m *Machine[ID, C]) History() g.Slice[Transition[ID]] { return m.history.Clone() }

// Ticks returns how many Update calls ran the transition protocol.
func (m *Machine[ID, C]) Ticks() uint64 { return m.ticks }

// Owner returns the object the machine was created for. It is nil after Shutdown.
func (m *Machine[ID, C]) Owner() any { return m.owner }

// OwnerOf returns the machine's owner as an O.
func OwnerOf[O any, ID comparable, C any](m *Machine[ID, C]) g.Option[O] {
	if o, ok := m.owner.(O); ok {
		return g.Some(o)
	}

	return g.None[O]()
}

// CurrentStateName returns the label of the current state, or "none".
// The label is the state's Name when it implements Namer, else its identifier.
func (m *Machine[ID, C]) CurrentStateName() g.String {
	if m.current.IsNone() {
		return "none"
	}

	cur := m.current.Some()

	return stateLabel(cur.id, cur.state)
}

func stateLabel[ID comparable, C any](id ID, state State[ID, C]) g.String {
	if n, ok := state.(Namer); ok {
		return g.String(n.Name())
	}

	return idLabel(id)
}

func idLabel[ID comparable](id ID) g.String { return g.String(fmt.Sprint(id)) }

func slotID[ID comparable, C any](o g.Option[slot[ID, C]]) g.Option[ID] {
	if o.IsNone() {
		return g.None[ID]()
	}

	return g.Some(o.Some().id)
}

func slotState[ID comparable, C any](o g.Option[slot[ID, C]]) g.Option[State[ID, C]] {
	if o.IsNone() {
		return g.None[State[ID, C]]()
	}

	return g.Some(o.Some().state)
}
