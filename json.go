package fsm

import (
	"encoding/json"

	"github.com/enetx/g"
)

// Snapshot is a serializable, read-only view of a machine for diagnostics.
// It is not meant to be loaded back into a machine.
type Snapshot[ID comparable] struct {
	Enabled  bool                        `json:"enabled"`
	Shutdown bool                        `json:"shutdown"`
	Ticks    uint64                      `json:"ticks"`
	Current  *ID                         `json:"current,omitempty"`
	Previous *ID                         `json:"previous,omitempty"`
	Queued   *ID                         `json:"queued,omitempty"`
	Name     g.String                    `json:"name"`
	States   g.Slice[ID]                 `json:"states"`
	History  g.Slice[TransitionJSON[ID]] `json:"history"`
}

// TransitionJSON is the serialized form of a Transition.
type TransitionJSON[ID comparable] struct {
	From   *ID    `json:"from,omitempty"`
	To     ID     `json:"to"`
	Forced bool   `json:"forced,omitempty"`
	Tick   uint64 `json:"tick"`
}

// Snapshot captures the machine's current diagnostic state.
func (m *Machine[ID, C]) Snapshot() Snapshot[ID] {
	history := g.NewSlice[TransitionJSON[ID]]()
	for t := range m.history.Iter() {
		history.Push(TransitionJSON[ID]{From: optionPtr(t.From), To: t.To, Forced: t.Forced, Tick: t.Tick})
	}

	return Snapshot[ID]{
		Enabled:  m.enabled,
		Shutdown: m.shutdown,
		Ticks:    m.ticks,
		Current:  optionPtr(m.Current()),
		Previous: optionPtr(m.previous),
		Queued:   optionPtr(m.Queued()),
		Name:     m.CurrentStateName(),
		States:   m.order.Clone(),
		History:  history,
	}
}

// MarshalJSON implements the json.Marshaler interface.
func (m *Machine[ID, C]) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Snapshot())
}

func optionPtr[T any](o g.Option[T]) *T {
	if o.IsNone() {
		return nil
	}

	v := o.Some()

	return &v
}
