package sense

import "github.com/google/uuid"

// Hearing is a sound sensor. A noise is heard when the listener's head lies within
// the sum of the hearing radius and the noise radius.
type Hearing struct {
	// Self is the owning entity; its own noises are never heard.
	Self   uuid.UUID
	Radius float64
}

// Hears reports whether a listener whose head is at head hears n.
func (h Hearing) Hears(head Vec3, n Noise) bool {
	if n.Source == h.Self {
		return false
	}

	return Distance(head, n.Position) <= max(h.Radius, 0)+n.Radius
}

// Listen subscribes the sensor to bus. head is sampled on every noise; onHeard runs
// for each noise the sensor hears. The returned subscription must be released when
// the owning entity is destroyed.
func (h Hearing) Listen(bus *Bus, head func() Vec3, onHeard func(Noise)) *Subscription {
	if bus == nil || head == nil || onHeard == nil {
		return &Subscription{}
	}

	return bus.Subscribe(func(n Noise) {
		if h.Hears(head(), n) {
			onHeard(n)
		}
	})
}
