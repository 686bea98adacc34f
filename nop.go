package fsm

import "github.com/enetx/g"

// Nop is a state that does nothing. It works as a placeholder state, and as an
// embedded base for states that only need some of the callbacks.
type Nop[ID comparable, C any] struct{}

var _ State[int, any] = Nop[int, any]{}

func (Nop[ID, C]) Initialize(*Machine[ID, C]) {}
func (Nop[ID, C]) Enter(*Machine[ID, C], g.Option[ID], C) {}
func (Nop[ID, C]) Update(*Machine[ID, C]) {}
func (Nop[ID, C]) LateUpdate(*Machine[ID, C]) {}
func (Nop[ID, C]) Exit(*Machine[ID, C], g.Option[ID]) {}
func (Nop[ID, C]) Shutdown(*Machine[ID, C]) {}
