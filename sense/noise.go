// Package sense provides the perception layer entity behavior is built on: a noise
// event bus with explicit subscriptions, the actuator that emits noise, and the
// hearing and vision sensors that turn the world into stimuli.
package sense

import (
	"sync"

	"github.com/enetx/g"
	"github.com/google/uuid"
)

// Noise is a sound made somewhere in the world.
type Noise struct {
	// Source is the entity that made the noise.
	Source uuid.UUID
	// Position is where the noise was made.
	Position Vec3
	// Radius is how far the noise carries beyond a listener's own hearing radius.
	Radius float64
	// AlertFactor is how much suspicion the noise adds to a listener.
	AlertFactor float64
}

// Listener receives every noise emitted on a Bus.
type Listener func(n Noise)

// Bus delivers noise to subscribed listeners. It replaces a process-wide broadcast
// list: every participant is handed the same Bus and owns its Subscription.
// All methods are safe for concurrent use.
type Bus struct {
	mu        sync.RWMutex
	listeners g.Map[uint64, Listener]
	order     g.Slice[uint64]
	nextID    uint64
	closed    bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		listeners: g.NewMap[uint64, Listener](),
		order:     g.NewSlice[uint64](),
	}
}

// Subscription ties a listener to a bus until Unsubscribe is called.
type Subscription struct {
	bus  *Bus
	id   uint64
	once sync.Once
}

// Subscribe registers l. Listeners are called in subscription order. A nil listener
// or a closed bus yields a subscription that is already inert.
func (b *Bus) Subscribe(l Listener) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if l == nil || b.closed {
		return &Subscription{}
	}

	b.nextID++
	id := b.nextID

	b.listeners[id] = l
	b.order.Push(id)

	return &Subscription{bus: b, id: id}
}

// Unsubscribe removes the listener from its bus. It is safe to call more than once
// and from inside a listener; the change applies to the next Emit.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.bus == nil {
		return
	}

	s.once.Do(func() { s.bus.remove(s.id) })
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.listeners.Contains(id) {
		return
	}

	delete(b.listeners, id)
	b.order = b.order.Iter().Exclude(func(other uint64) bool { return other == id }).Collect()
}

// Emit delivers n to every listener subscribed when Emit was called and returns how
// many were reached. Emitting into an empty or closed bus reaches nobody.
func (b *Bus) Emit(n Noise) int {
	b.mu.RLock()

	if b.closed {
		b.mu.RUnlock()
		return 0
	}

	targets := make([]Listener, 0, len(b.order))
	for id := range b.order.Iter() {
		targets = append(targets, b.listeners[id])
	}

	b.mu.RUnlock()

	for _, l := range targets {
		l(n)
	}

	return len(targets)
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.listeners)
}

// Close drops every subscription. Later Subscribe calls return inert
// subscriptions and Emit reaches nobody. Close is idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true
	clear(b.listeners)
	b.order = g.NewSlice[uint64]()
}

const (
	// DefaultNoiseRadius is the radius an Actuator uses when none is configured.
	DefaultNoiseRadius = 5.0
	// DefaultAlertFactor is the alert factor an Actuator uses when none is configured.
	DefaultAlertFactor = 5.0
)

// Actuator makes noise on behalf of an entity.
type Actuator struct {
	Owner       uuid.UUID
	Radius      float64
	AlertFactor float64
}

// NewActuator creates an actuator for owner. Zero radius or alert factor keep the
// defaults.
func NewActuator(owner uuid.UUID, radius, alertFactor float64) Actuator {
	a := Actuator{Owner: owner, Radius: DefaultNoiseRadius, AlertFactor: DefaultAlertFactor}

	if radius != 0 {
		a.Radius = radius
	}

	if alertFactor != 0 {
		a.AlertFactor = alertFactor
	}

	return a
}

// MakeNoise emits a noise at pos and returns how many listeners it reached.
// A negative override selects the actuator's configured value.
func (a Actuator) MakeNoise(bus *Bus, pos Vec3, alertOverride, radiusOverride float64) int {
	if bus == nil {
		return 0
	}

	alert := a.AlertFactor
	if alertOverride >= 0 {
		alert = alertOverride
	}

	radius := a.Radius
	if radiusOverride >= 0 {
		radius = radiusOverride
	}

	return bus.Emit(Noise{Source: a.Owner, Position: pos, Radius: radius, AlertFactor: alert})
}
