package sim

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrEntityFault reports a guard that panicked during a tick phase.
type ErrEntityFault struct {
	Entity string
	ID     uuid.UUID
	Phase  string
	Value  any
}

func (e *ErrEntityFault) Error() string {
	return fmt.Sprintf("sim: guard %s (%s) panicked during %s: %v", e.Entity, e.ID, e.Phase, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *ErrEntityFault) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}

	return nil
}

// IsEntityFault reports whether err is, or wraps, an *ErrEntityFault.
func IsEntityFault(err error) bool {
	var e *ErrEntityFault
	return errors.As(err, &e)
}

// Faults returns every *ErrEntityFault in err, looking through errors.Join trees.
func Faults(err error) []*ErrEntityFault {
	if f, ok := err.(*ErrEntityFault); ok {
		return []*ErrEntityFault{f}
	}

	var faults []*ErrEntityFault
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			faults = append(faults, Faults(e)...)
		}
	}

	return faults
}
