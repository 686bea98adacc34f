package fsm

import "github.com/enetx/g"

// Interface compliance check.
var (
	_ StateMachine[int, any] = (*Machine[int, any])(nil)
	_ StateMachine[int, any] = (*SyncMachine[int, any])(nil)
)

// Unwrap returns the wrapped machine. Using it bypasses the lock.
func (sm *SyncMachine[ID, C]) Unwrap() *Machine[ID, C] { return sm.m }

// RegisterState is the thread-safe version of Machine.RegisterState.
func (sm *SyncMachine[ID, C]) RegisterState(id ID, state State[ID, C]) *SyncMachine[ID, C] {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.m.RegisterState(id, state)
	return sm
}

// QueueState is the thread-safe version of Machine.QueueState.
func (sm *SyncMachine[ID, C]) QueueState(id ID, ctx ...C) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return sm.m.QueueState(id, ctx...)
}

// ForceState is the thread-safe version of Machine.ForceState.
func (sm *SyncMachine[ID, C]) ForceState(id ID, ctx ...C) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return sm.m.ForceState(id, ctx...)
}

// Update is the thread-safe version of Machine.Update.
// State callbacks run with the lock held; they must use the *Machine they are
// given and never call back into the SyncMachine.
func (sm *SyncMachine[ID, C]) Update() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.m.Update()
}

// LateUpdate is the thread-safe version of Machine.LateUpdate.
func (sm *SyncMachine[ID, C]) LateUpdate() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.m.LateUpdate()
}

// Shutdown is the thread-safe version of Machine.Shutdown.
func (sm *SyncMachine[ID, C]) Shutdown() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.m.Shutdown()
}

// Current is the thread-safe version of Machine.Current.
func (sm *SyncMachine[ID, C]) Current() g.Option[ID] {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.Current()
}

// Previous is the thread-safe version of Machine.Previous.
func (sm *SyncMachine[ID, C]) Previous() g.Option[ID] {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.Previous()
}

// Queued is the thread-safe version of Machine.Queued.
func (sm *SyncMachine[ID, C]) Queued() g.Option[ID] {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.Queued()
}

// IsCurrentOrQueued is the thread-safe version of Machine.IsCurrentOrQueued.
func (sm *SyncMachine[ID, C]) IsCurrentOrQueued(id ID) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.IsCurrentOrQueued(id)
}

// CurrentStateName is the thread-safe version of Machine.CurrentStateName.
func (sm *SyncMachine[ID, C]) CurrentStateName() g.String {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.CurrentStateName()
}

// Enabled is the thread-safe version of Machine.Enabled.
func (sm *SyncMachine[ID, C]) Enabled() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.Enabled()
}

// SetEnabled is the thread-safe version of Machine.SetEnabled.
func (sm *SyncMachine[ID, C]) SetEnabled(enabled bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.m.SetEnabled(enabled)
}

// IsShutdown is the thread-safe version of Machine.IsShutdown.
func (sm *SyncMachine[ID, C]) IsShutdown() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.IsShutdown()
}

// History is the thread-safe version of Machine.History.
func (sm *SyncMachine[ID, C]) History() g.Slice[Transition[ID]] {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.History()
}

// States is the thread-safe version of Machine.States.
func (sm *SyncMachine[ID, C]) States() g.Slice[ID] {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.States()
}

// ToDOT is the thread-safe version of Machine.ToDOT.
func (sm *SyncMachine[ID, C]) ToDOT() g.String {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.ToDOT()
}

// MarshalJSON implements the json.Marshaler interface for thread-safe
// serialization of the machine's diagnostic snapshot.
func (sm *SyncMachine[ID, C]) MarshalJSON() ([]byte, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.MarshalJSON()
}
