// Package sim runs a scenario: a scripted player walking past guards whose
// behavior machines are ticked in parallel, one goroutine per guard and phase.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/enetx/g"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/maxhimmel/fsm"
	"github.com/maxhimmel/fsm/internal/guard"
	"github.com/maxhimmel/fsm/internal/logging"
	"github.com/maxhimmel/fsm/internal/scenario"
	"github.com/maxhimmel/fsm/sense"
)

// Option configures a World.
type Option func(*World)

// WithLogger sets the logger for tick and transition events.
func WithLogger(l *slog.Logger) Option {
	return func(w *World) { w.logger = l }
}

// WithHistoryLimit bounds every guard's transition log.
func WithHistoryLimit(n int) Option {
	return func(w *World) { w.historyLimit = n }
}

// WithGuardOptions appends options applied to every guard after the world's own.
func WithGuardOptions(opts ...guard.Option) Option {
	return func(w *World) { w.guardOpts = append(w.guardOpts, opts...) }
}

type member struct {
	guard       *guard.Guard
	transitions int
	alerts      int
}

// World holds the noise bus, the player and the guards.
type World struct {
	name   string
	bus    *sense.Bus
	player *Player
	guards []*member

	logger       *slog.Logger
	historyLimit int
	guardOpts    []guard.Option

	ticks  uint64
	closed bool
}

// New builds a world from sc.
func New(sc *scenario.Scenario, opts ...Option) *World {
	w := &World{
		name:   sc.Name,
		bus:    sense.NewBus(),
		player: NewPlayer(sc.Player),
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(w)
	}

	for _, sg := range sc.Guards {
		w.spawn(sg)
	}

	return w
}

func (w *World) spawn(sg scenario.Guard) {
	cfg := guard.Config{
		Name:           sg.Name,
		Position:       sg.Position.Vec(),
		Facing:         sg.Facing.Vec(),
		Speed:          sg.Speed,
		Hearing:        sg.HearingRadius,
		Vision:         sense.Vision{Range: sg.Vision.Range, FieldOfView: sg.Vision.FieldOfView},
		IdleTicks:      sg.IdleTicks,
		SearchTicks:    sg.SearchTicks,
		LoseTicks:      sg.LoseTicks,
		AlertThreshold: sg.AlertThreshold,
		Decay:          sg.Decay,
		HistoryLimit:   w.historyLimit,
	}

	for _, wp := range sg.Waypoints {
		cfg.Waypoints = append(cfg.Waypoints, wp.Vec())
	}

	opts := append([]guard.Option{
		guard.WithTarget(w.player.Position),
		guard.WithLogger(w.logger),
	}, w.guardOpts...)

	mb := &member{guard: guard.New(cfg, w.bus, opts...)}

	// Hooks run on the guard's own goroutine and touch only its member.
	mb.guard.Machine().OnTransition(func(t fsm.Transition[guard.StateID]) {
		mb.transitions++
		if t.To == guard.Alert {
			mb.alerts++
		}
	})

	w.guards = append(w.guards, mb)
}

// Tick advances the world by one tick: the player steps and makes its noise, then
// every guard runs Update, then every guard that did not fault runs LateUpdate. Each
// panicking guard is reported as an *ErrEntityFault; several faults are joined.
func (w *World) Tick(ctx context.Context) error {
	if w.closed {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	w.ticks++

	heard := w.player.Step(w.bus)
	w.logger.Debug("tick", logging.Tick(w.ticks), slog.Int("listeners", heard))

	faults := w.phase("Update", w.guards, (*guard.Guard).Update)

	healthy := make([]*member, 0, len(w.guards))
	for i, mb := range w.guards {
		if faults[i] == nil {
			healthy = append(healthy, mb)
		}
	}

	faults = append(faults, w.phase("LateUpdate", healthy, (*guard.Guard).LateUpdate)...)

	var errs []error
	for _, f := range faults {
		if f != nil {
			errs = append(errs, f)
		}
	}

	return errors.Join(errs...)
}

// phase runs fn for every member on its own goroutine and returns one slot per
// member, nil unless that member panicked.
func (w *World) phase(name string, members []*member, fn func(*guard.Guard)) []*ErrEntityFault {
	faults := make([]*ErrEntityFault, len(members))

	var eg errgroup.Group

	for i, mb := range members {
		eg.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					faults[i] = &ErrEntityFault{Entity: mb.guard.Name(), ID: mb.guard.ID(), Phase: name, Value: r}
				}
			}()

			fn(mb.guard)

			return nil
		})
	}

	_ = eg.Wait()

	return faults
}

// Run ticks the world n times. A positive rate throttles the loop to rate ticks per
// second. Every faulted guard is logged and removed; the run goes on without them.
func (w *World) Run(ctx context.Context, n, rate int) error {
	var tc <-chan time.Time
	if rate > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(rate))
		defer ticker.Stop()
		tc = ticker.C
	}

	for range n {
		if err := ctx.Err(); err != nil {
			return err
		}

		if tc != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tc:
			}
		}

		err := w.Tick(ctx)
		if err == nil {
			continue
		}

		faults := Faults(err)
		if len(faults) == 0 {
			return fmt.Errorf("tick %d: %w", w.ticks, err)
		}

		for _, fault := range faults {
			w.logger.Error("guard faulted", logging.Name(fault.Entity), logging.Tick(w.ticks), logging.Error(fault))
			w.remove(fault.ID)
		}
	}

	return nil
}

func (w *World) remove(id uuid.UUID) {
	kept := w.guards[:0]

	for _, mb := range w.guards {
		if mb.guard.ID() == id {
			mb.guard.Destroy()
			continue
		}

		kept = append(kept, mb)
	}

	w.guards = kept
}

// Close destroys every guard and closes the bus. It is idempotent.
func (w *World) Close() {
	if w.closed {
		return
	}

	w.closed = true

	for _, mb := range w.guards {
		mb.guard.Destroy()
	}

	w.bus.Close()
}

// GuardSummary is the end-of-run report for one guard.
type GuardSummary struct {
	Name        string
	ID          uuid.UUID
	State       string
	Transitions int
	Alerts      int
	Suspicion   float64
	Position    sense.Vec3
}

// Summary reports every guard in scenario order.
func (w *World) Summary() []GuardSummary {
	out := make([]GuardSummary, 0, len(w.guards))

	for _, mb := range w.guards {
		out = append(out, GuardSummary{
			Name:        mb.guard.Name(),
			ID:          mb.guard.ID(),
			State:       string(mb.guard.Machine().CurrentStateName()),
			Transitions: mb.transitions,
			Alerts:      mb.alerts,
			Suspicion:   mb.guard.Suspicion(),
			Position:    mb.guard.Position(),
		})
	}

	return out
}

// Guard returns the guard called name.
func (w *World) Guard(name string) g.Option[*guard.Guard] {
	for _, mb := range w.guards {
		if mb.guard.Name() == name {
			return g.Some(mb.guard)
		}
	}

	return g.None[*guard.Guard]()
}

// Guards returns the live guards in scenario order.
func (w *World) Guards() []*guard.Guard {
	out := make([]*guard.Guard, 0, len(w.guards))
	for _, mb := range w.guards {
		out = append(out, mb.guard)
	}

	return out
}

func (w *World) Name() string { return w.name }
func (w *World) Bus() *sense.Bus { return w.bus }
func (w *World) Player() *Player { return w.player }
func (w *World) Ticks() uint64 { return w.ticks }
