package fsm

import (
	"sync"

	"github.com/enetx/g"
)

type (
	// TransitionHook is a global callback called after a transition commits.
	// It runs after the old state's Exit and before the new state's Enter.
	TransitionHook[ID comparable] func(t Transition[ID])

	// Transition records one committed state change.
	Transition[ID comparable] struct {
		// From is the state that was current before the change, or none on the first activation.
		From g.Option[ID]
		// To is the state that became current.
		To ID
		// Forced reports whether the change was requested with ForceState.
		Forced bool
		// Tick is the value of Ticks() when the change committed.
		Tick uint64
	}

	// slot binds a registered identifier to the instance it named when it was looked up.
	slot[ID comparable, C any] struct {
		id    ID
		state State[ID, C]
	}

	// Machine is a tick-driven state machine. States are registered under identifiers of
	// type ID and receive a payload of type C when they are entered.
	//
	// A Machine is not safe for concurrent use; see SyncMachine.
	Machine[ID comparable, C any] struct {
		owner    any
		registry g.Map[ID, State[ID, C]]
		order    g.Slice[ID]

		current  g.Option[slot[ID, C]]
		previous g.Option[ID]
		pending  g.Option[request[ID, C]]

		onTransition g.Slice[TransitionHook[ID]]
		history      g.Slice[Transition[ID]]
		historyLimit int
		ticks        uint64

		enabled  bool
		shutdown bool
		ticking  bool
	}

	// SyncMachine is a thread-safe wrapper around a Machine.
	// It protects all state-mutating and state-reading operations with a sync.RWMutex,
	// so a status reporter or a console may inspect or queue while another goroutine ticks.
	// State callbacks receive the wrapped Machine, never the SyncMachine.
	SyncMachine[ID comparable, C any] struct {
		m  *Machine[ID, C]
		mu sync.RWMutex
	}
)
