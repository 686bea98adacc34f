package fsm

import "github.com/enetx/g"

// State is the contract every behavior state implements. All six callbacks are
// invoked by the owning machine only.
type State[ID comparable, C any] interface {
	// Initialize is called once, when the state is registered.
	Initialize(m *Machine[ID, C])
	// Enter is called once per activation, after the machine made the state current.
	// previous is none on the first activation; ctx is the payload given to the queue
	// call, or the zero value of C.
	Enter(m *Machine[ID, C], previous g.Option[ID], ctx C)
	// Update is called once per tick while the state is current.
	Update(m *Machine[ID, C])
	// LateUpdate is called once per tick while the state is current, after every
	// Update of the tick has run.
	LateUpdate(m *Machine[ID, C])
	// Exit is called once before the machine switches away. next is none when the
	// machine is shutting down.
	Exit(m *Machine[ID, C], next g.Option[ID])
	// Shutdown is called once when the machine shuts down, whether or not the state
	// was ever entered.
	Shutdown(m *Machine[ID, C])
}

// Namer is implemented by states that provide a stable diagnostic label.
type Namer interface {
	Name() string
}

type StateMachine[ID comparable, C any] interface {
	QueueState(ID, ...C) error
	ForceState(ID, ...C) error
	Update()
	LateUpdate()
	Shutdown()
	Current() g.Option[ID]
	Previous() g.Option[ID]
	Queued() g.Option[ID]
	IsCurrentOrQueued(ID) bool
	CurrentStateName() g.String
	Enabled() bool
	SetEnabled(bool)
	IsShutdown() bool
	History() g.Slice[Transition[ID]]
	States() g.Slice[ID]
	ToDOT() g.String
	MarshalJSON() ([]byte, error)
}
