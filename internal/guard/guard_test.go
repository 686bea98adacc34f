package guard_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/enetx/g"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxhimmel/fsm"
	"github.com/maxhimmel/fsm/internal/guard"
	"github.com/maxhimmel/fsm/sense"
)

func newGuard(t *testing.T, cfg guard.Config, bus *sense.Bus, opts ...guard.Option) *guard.Guard {
	t.Helper()

	gd := guard.New(cfg, bus, opts...)
	t.Cleanup(gd.Destroy)

	return gd
}

func tick(gd *guard.Guard, n int) {
	for range n {
		gd.Update()
		gd.LateUpdate()
	}
}

func requireState(t *testing.T, gd *guard.Guard, want guard.StateID) {
	t.Helper()

	require.Equal(t, g.Some(want), gd.State(), "state is %s", gd.Machine().CurrentStateName())
}

func noise(at sense.Vec3, alert float64) sense.Noise {
	return sense.Noise{Source: uuid.New(), Position: at, Radius: 1, AlertFactor: alert}
}

func TestStateID_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "idle", guard.Idle.String())
	assert.Equal(t, "patrol", guard.Patrol.String())
	assert.Equal(t, "investigate", guard.Investigate.String())
	assert.Equal(t, "alert", guard.Alert.String())
	assert.Equal(t, "StateID(9)", guard.StateID(9).String())
}

func TestGuard_StartsIdle(t *testing.T) {
	t.Parallel()

	bus := sense.NewBus()
	gd := newGuard(t, guard.Config{Name: "g1"}, bus)

	assert.True(t, gd.State().IsNone())
	assert.Equal(t, g.Some(guard.Idle), gd.Machine().Queued())
	assert.Equal(t, 1, bus.Len())

	tick(gd, 1)
	requireState(t, gd, guard.Idle)

	owner := fsm.OwnerOf[*guard.Guard](gd.Machine())
	require.True(t, owner.IsSome())
	assert.Same(t, gd, owner.Some())
}

func TestGuard_IdleThenPatrol(t *testing.T) {
	t.Parallel()

	gd := newGuard(t, guard.Config{
		Facing:    sense.Vec3{Z: 1},
		Speed:     1,
		IdleTicks: 2,
		Waypoints: []sense.Vec3{{X: 4}, {X: -4}},
	}, sense.NewBus())

	tick(gd, 2)
	requireState(t, gd, guard.Idle)

	tick(gd, 1)
	requireState(t, gd, guard.Patrol)
	assert.Equal(t, sense.Vec3{X: 1}, gd.Position())
	assert.Equal(t, sense.Vec3{X: 1}, gd.Facing())

	// Three more steps reach the first waypoint, then the guard rests.
	tick(gd, 3)
	assert.Equal(t, sense.Vec3{X: 4}, gd.Position())
	tick(gd, 1)
	requireState(t, gd, guard.Idle)

	// The patrol resumes toward the second waypoint.
	tick(gd, 2)
	requireState(t, gd, guard.Patrol)
	assert.Equal(t, sense.Vec3{X: 3}, gd.Position())
	assert.Equal(t, sense.Vec3{X: -1}, gd.Facing())
}

func TestGuard_IdleWithoutWaypoints(t *testing.T) {
	t.Parallel()

	gd := newGuard(t, guard.Config{IdleTicks: 1}, sense.NewBus())

	tick(gd, 10)
	requireState(t, gd, guard.Idle)
	assert.Len(t, gd.Machine().History(), 1)
}

func TestGuard_InvestigatesNoise(t *testing.T) {
	t.Parallel()

	bus := sense.NewBus()
	gd := newGuard(t, guard.Config{
		Speed:       1,
		Hearing:     5,
		IdleTicks:   100,
		SearchTicks: 2,
	}, bus)

	tick(gd, 1)
	require.Equal(t, 1, bus.Emit(noise(sense.Vec3{X: 3}, 1)))
	assert.Equal(t, g.Some(guard.Investigate), gd.Machine().Queued())
	assert.InDelta(t, 1, gd.Suspicion(), 1e-9)

	tick(gd, 1)
	requireState(t, gd, guard.Investigate)
	assert.Equal(t, g.Some(guard.Idle), gd.Machine().Previous())
	assert.Equal(t, sense.Vec3{X: 1}, gd.Position())

	// Two more steps to arrive, one more to finish the search.
	tick(gd, 3)
	assert.Equal(t, sense.Vec3{X: 3}, gd.Position())
	requireState(t, gd, guard.Investigate)

	// Without waypoints the guard goes back to idling.
	tick(gd, 1)
	requireState(t, gd, guard.Idle)
}

func TestGuard_IgnoresDistantNoise(t *testing.T) {
	t.Parallel()

	bus := sense.NewBus()
	gd := newGuard(t, guard.Config{Hearing: 2}, bus)

	tick(gd, 1)
	bus.Emit(noise(sense.Vec3{X: 10}, 1))

	assert.True(t, gd.Machine().Queued().IsNone())
	assert.Zero(t, gd.Suspicion())
}

func TestGuard_LouderNoiseRestartsInvestigation(t *testing.T) {
	t.Parallel()

	bus := sense.NewBus()
	gd := newGuard(t, guard.Config{Speed: 1, Hearing: 10, IdleTicks: 100}, bus)

	tick(gd, 1)
	bus.Emit(noise(sense.Vec3{X: 3}, 1))
	tick(gd, 1)
	requireState(t, gd, guard.Investigate)

	bus.Emit(noise(sense.Vec3{Z: 3}, 3))
	tick(gd, 1)
	requireState(t, gd, guard.Investigate)

	last := gd.Machine().History()[len(gd.Machine().History())-1]
	assert.Equal(t, g.Some(guard.Investigate), last.From)
	assert.Equal(t, guard.Investigate, last.To)
	assert.True(t, last.Forced)

	// A quieter noise does not interrupt.
	bus.Emit(noise(sense.Vec3{X: -3}, 2))
	assert.True(t, gd.Machine().Queued().IsNone())
}

func TestGuard_SuspicionRaisesAlarm(t *testing.T) {
	t.Parallel()

	bus := sense.NewBus()
	gd := newGuard(t, guard.Config{Hearing: 10, AlertThreshold: 2, IdleTicks: 100}, bus)

	tick(gd, 1)
	bus.Emit(noise(sense.Vec3{X: 3}, 1))
	bus.Emit(noise(sense.Vec3{X: 4}, 1.5))
	assert.Equal(t, g.Some(guard.Alert), gd.Machine().Queued())

	tick(gd, 1)
	requireState(t, gd, guard.Alert)
	assert.True(t, gd.Machine().Queued().IsNone())
}

func TestGuard_SuspicionDecays(t *testing.T) {
	t.Parallel()

	bus := sense.NewBus()
	gd := newGuard(t, guard.Config{Hearing: 10, Decay: 0.5, IdleTicks: 100}, bus)

	bus.Emit(noise(sense.Vec3{X: 3}, 1))
	tick(gd, 1)
	assert.InDelta(t, 0.5, gd.Suspicion(), 1e-9)
	tick(gd, 5)
	assert.Zero(t, gd.Suspicion())
}

func TestGuard_SightAndLoss(t *testing.T) {
	t.Parallel()

	target := sense.Vec3{Z: 5}
	gd := newGuard(t, guard.Config{
		Facing:    sense.Vec3{Z: 1},
		Speed:     1,
		Vision:    sense.Vision{Range: 10, FieldOfView: 90},
		LoseTicks: 2,
	}, sense.NewBus(), guard.WithTarget(func() sense.Vec3 { return target }))

	gd.Update()
	requireState(t, gd, guard.Alert)
	assert.InDelta(t, 1.5, gd.Position().Z, 1e-9)

	target = sense.Vec3{Z: -5}
	gd.Update()
	requireState(t, gd, guard.Alert)
	gd.Update()
	gd.Update()
	requireState(t, gd, guard.Investigate)
	assert.Zero(t, gd.Suspicion())
	assert.InDelta(t, 4, gd.Position().Z, 1e-9)
}

func TestGuard_LineOfSightBlocks(t *testing.T) {
	t.Parallel()

	gd := newGuard(t, guard.Config{
		Facing: sense.Vec3{Z: 1},
		Vision: sense.Vision{Range: 10, FieldOfView: 90},
	}, sense.NewBus(),
		guard.WithTarget(func() sense.Vec3 { return sense.Vec3{Z: 5} }),
		guard.WithLineOfSight(func(_, _ sense.Vec3) bool { return false }),
	)

	tick(gd, 5)
	requireState(t, gd, guard.Idle)
}

func TestGuard_Logger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	id := uuid.New()
	gd := newGuard(t, guard.Config{Name: "north"}, sense.NewBus(), guard.WithLogger(logger), guard.WithID(id))
	tick(gd, 1)

	assert.Equal(t, id, gd.ID())
	assert.Contains(t, buf.String(), "fsm transition")
	assert.Contains(t, buf.String(), "to=idle")
	assert.Contains(t, buf.String(), "name=north")
	assert.Contains(t, buf.String(), id.String())
}

func TestGuard_Destroy(t *testing.T) {
	t.Parallel()

	bus := sense.NewBus()
	gd := guard.New(guard.Config{Hearing: 10}, bus)
	tick(gd, 1)

	gd.Destroy()
	gd.Destroy()

	assert.True(t, gd.Destroyed())
	assert.True(t, gd.Machine().IsShutdown())
	assert.Zero(t, bus.Len())
	assert.True(t, gd.State().IsNone())

	assert.Zero(t, bus.Emit(noise(sense.Vec3{X: 1}, 1)))
	assert.NotPanics(t, func() { tick(gd, 1) })
}
