package fsm

import (
	"errors"
	"fmt"
)

// ErrUnregisteredState is returned when QueueState or ForceState names an identifier
// that was never registered on the machine. Queuing a state that can never be entered
// is a programming error, so the request is rejected and the machine is left unchanged.
type ErrUnregisteredState struct {
	ID any
}

func (e *ErrUnregisteredState) Error() string {
	return fmt.Sprintf("fsm: state %v is not registered", e.ID)
}

// IsUnregisteredState reports whether err is, or wraps, an *ErrUnregisteredState.
func IsUnregisteredState(err error) bool {
	var e *ErrUnregisteredState
	return errors.As(err, &e)
}

// ErrReentrantTick is the panic value raised when Update or LateUpdate is called
// from inside a state callback of the same machine.
type ErrReentrantTick struct {
	// Phase is the method that was re-entered ("Update" or "LateUpdate").
	Phase string
}

func (e *ErrReentrantTick) Error() string {
	return fmt.Sprintf("fsm: %s called while the machine is already ticking", e.Phase)
}
