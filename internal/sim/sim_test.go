package sim_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxhimmel/fsm"
	"github.com/maxhimmel/fsm/internal/guard"
	"github.com/maxhimmel/fsm/internal/scenario"
	"github.com/maxhimmel/fsm/internal/sim"
	"github.com/maxhimmel/fsm/sense"
)

const corridor = `
name: corridor
player:
  speed: 1
  step_every: 1
  footstep: {radius: 1, alert: 1}
  path: [[0, 0, 0], [10, 0, 0]]
guards:
  - name: watcher
    position: [0, 0, 5]
    facing: [0, 0, 1]
    hearing_radius: 10
    vision: {range: 5, fov: 90}
    idle_ticks: 100
    alert_threshold: 100
  - name: sleeper
    position: [50, 0, 50]
    hearing_radius: 1
`

func newWorld(t *testing.T, doc string, opts ...sim.Option) *sim.World {
	t.Helper()

	sc, err := scenario.Parse([]byte(doc))
	require.NoError(t, err)

	w := sim.New(sc, opts...)
	t.Cleanup(w.Close)

	return w
}

func TestPlayer_Step(t *testing.T) {
	t.Parallel()

	bus := sense.NewBus()
	heard := 0
	bus.Subscribe(func(sense.Noise) { heard++ })

	p := sim.NewPlayer(scenario.Player{
		Speed:     1,
		StepEvery: 2,
		Path:      []scenario.Point{{0, 0, 0}, {2, 0, 0}},
	})
	assert.Equal(t, sense.Vec3{}, p.Position())
	assert.False(t, p.Done())

	assert.Zero(t, p.Step(bus))
	assert.Equal(t, sense.Vec3{X: 1}, p.Position())

	assert.Equal(t, 1, p.Step(bus))
	assert.Equal(t, sense.Vec3{X: 2}, p.Position())
	assert.True(t, p.Done())

	assert.Zero(t, p.Step(bus))
	assert.Equal(t, 1, heard)
	assert.Equal(t, 1, p.Footsteps())
}

func TestPlayer_Loop(t *testing.T) {
	t.Parallel()

	p := sim.NewPlayer(scenario.Player{
		Speed: 5,
		Loop:  true,
		Path:  []scenario.Point{{0, 0, 0}, {1, 0, 0}},
	})

	p.Step(nil)
	assert.Equal(t, sense.Vec3{X: 1}, p.Position())
	p.Step(nil)
	assert.Equal(t, sense.Vec3{}, p.Position())
	assert.False(t, p.Done())
}

func TestWorld_Tick(t *testing.T) {
	t.Parallel()

	w := newWorld(t, corridor)
	require.Len(t, w.Guards(), 2)
	assert.Equal(t, "corridor", w.Name())
	assert.Equal(t, 2, w.Bus().Len())

	require.NoError(t, w.Tick(context.Background()))
	assert.Equal(t, uint64(1), w.Ticks())
	assert.Equal(t, sense.Vec3{X: 1}, w.Player().Position())

	watcher := w.Guard("watcher")
	require.True(t, watcher.IsSome())
	assert.Equal(t, guard.Investigate, watcher.Some().State().Some())

	summary := w.Summary()
	require.Len(t, summary, 2)
	assert.Equal(t, "watcher", summary[0].Name)
	assert.Equal(t, "investigate", summary[0].State)
	assert.Equal(t, 1, summary[0].Transitions)
	assert.Zero(t, summary[0].Alerts)
	assert.Equal(t, "idle", summary[1].State)

	assert.True(t, w.Guard("nobody").IsNone())
}

func TestWorld_SightRaisesAlarm(t *testing.T) {
	t.Parallel()

	const doc = `
player:
  path: [[0, 0, 3]]
guards:
  - name: eyes
    position: [0, 0, 0]
    facing: [0, 0, 1]
    vision: {range: 5, fov: 60}
`
	w := newWorld(t, doc)
	require.NoError(t, w.Run(context.Background(), 3, 0))

	summary := w.Summary()
	require.Len(t, summary, 1)
	assert.Equal(t, "alert", summary[0].State)
	assert.Equal(t, 1, summary[0].Alerts)
}

func TestWorld_FaultedGuardsAreRemoved(t *testing.T) {
	t.Parallel()

	boom := sim.WithGuardOptions(guard.WithTarget(func() sense.Vec3 { panic("boom") }))

	w := newWorld(t, corridor, boom)
	err := w.Tick(context.Background())
	require.Error(t, err)
	require.True(t, sim.IsEntityFault(err))

	var fault *sim.ErrEntityFault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "Update", fault.Phase)
	assert.Equal(t, "boom", fault.Value)
	assert.Contains(t, []string{"watcher", "sleeper"}, fault.Entity)

	w = newWorld(t, corridor, boom)
	require.NoError(t, w.Run(context.Background(), 3, 0))
	assert.Empty(t, w.Guards())
	assert.Zero(t, w.Bus().Len())
}

const pair = `
name: pair
player:
  path: [[0, 0, 0]]
guards:
  - name: faulty
    position: [50, 0, 50]
  - name: steady
    position: [-50, 0, -50]
`

// counting replaces a guard's idle state and counts its ticks.
type counting struct {
	fsm.Nop[guard.StateID, guard.Stimulus]
	panics bool
	late   int
}

func (c *counting) Update(*fsm.Machine[guard.StateID, guard.Stimulus]) {
	if c.panics {
		panic("idle broke")
	}
}

func (c *counting) LateUpdate(*fsm.Machine[guard.StateID, guard.Stimulus]) { c.late++ }

func replaceIdle(t *testing.T, w *sim.World, name string, state *counting) {
	t.Helper()

	gd := w.Guard(name)
	require.True(t, gd.IsSome())

	m := gd.Some().Machine()
	m.RegisterState(guard.Idle, state)
	require.NoError(t, m.ForceState(guard.Idle))
}

func TestWorld_FaultSparesOtherGuards(t *testing.T) {
	t.Parallel()

	w := newWorld(t, pair)
	faulty := &counting{panics: true}
	steady := &counting{}
	replaceIdle(t, w, "faulty", faulty)
	replaceIdle(t, w, "steady", steady)

	err := w.Tick(context.Background())
	faults := sim.Faults(err)
	require.Len(t, faults, 1)
	assert.Equal(t, "faulty", faults[0].Entity)
	assert.Equal(t, "Update", faults[0].Phase)

	assert.Zero(t, faulty.late)
	assert.Equal(t, 1, steady.late)

	require.NoError(t, w.Run(context.Background(), 2, 0))
	require.Len(t, w.Guards(), 1)
	assert.Equal(t, "steady", w.Guards()[0].Name())
	assert.Equal(t, 3, steady.late)
}

func TestWorld_SimultaneousFaults(t *testing.T) {
	t.Parallel()

	w := newWorld(t, pair)
	replaceIdle(t, w, "faulty", &counting{panics: true})
	replaceIdle(t, w, "steady", &counting{panics: true})

	faults := sim.Faults(w.Tick(context.Background()))
	require.Len(t, faults, 2)
	assert.ElementsMatch(t, []string{"faulty", "steady"}, []string{faults[0].Entity, faults[1].Entity})

	w = newWorld(t, pair)
	replaceIdle(t, w, "faulty", &counting{panics: true})
	replaceIdle(t, w, "steady", &counting{panics: true})

	require.NoError(t, w.Run(context.Background(), 1, 0))
	assert.Empty(t, w.Guards())
	assert.Zero(t, w.Bus().Len())
}

func TestEntityFault_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("cause")
	err := &sim.ErrEntityFault{Entity: "a", Phase: "LateUpdate", Value: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "LateUpdate")
	assert.NoError(t, (&sim.ErrEntityFault{Value: 42}).Unwrap())
}

func TestWorld_Run(t *testing.T) {
	t.Parallel()

	w := newWorld(t, corridor)
	require.NoError(t, w.Run(context.Background(), 3, 1000))
	assert.Equal(t, uint64(3), w.Ticks())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, w.Run(ctx, 5, 0), context.Canceled)
	assert.ErrorIs(t, w.Run(ctx, 5, 1000), context.Canceled)
	assert.ErrorIs(t, w.Tick(ctx), context.Canceled)
	assert.Equal(t, uint64(3), w.Ticks())
}

func TestWorld_Close(t *testing.T) {
	t.Parallel()

	w := newWorld(t, corridor)
	require.NoError(t, w.Tick(context.Background()))

	guards := w.Guards()
	w.Close()
	w.Close()

	for _, gd := range guards {
		assert.True(t, gd.Destroyed())
	}

	assert.Zero(t, w.Bus().Len())
	require.NoError(t, w.Tick(context.Background()))
	assert.Equal(t, uint64(1), w.Ticks())
}

func TestWorld_DefaultScenario(t *testing.T) {
	t.Parallel()

	sc, err := scenario.Default()
	require.NoError(t, err)

	w := sim.New(sc, sim.WithHistoryLimit(8))
	defer w.Close()

	require.NoError(t, w.Run(context.Background(), 600, 0))
	assert.Len(t, w.Summary(), 2)

	for _, gd := range w.Guards() {
		assert.LessOrEqual(t, len(gd.Machine().History()), 8)
	}
}
