package fsm

// request is a transition waiting for the next Update.
// ctx is handed to the target's Enter and is dropped once the request is consumed.
// force lets the request re-enter the state that is already current.
type request[ID comparable, C any] struct {
	target slot[ID, C]
	ctx    C
	force  bool
}

// payload returns the first value of an optional context argument list.
func payload[C any](ctx []C) C {
	var zero C
	if len(ctx) > 0 {
		return ctx[0]
	}

	return zero
}
