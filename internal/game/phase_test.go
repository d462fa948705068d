package game

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newEntryState builds a match state with the actor below the viewport, flying up.
func newEntryState(vp Viewport) *State {
	s := NewState(vp)
	size := vp.ActorSize()
	s.Actor = s.Registry.Spawn(Entity{
		Role:     RoleActor,
		Position: Vec2{Y: BottomOut(vp, size)},
		Velocity: Vec2{Y: 5},
		Size:     size,
		Owner:    1,
	})
	s.Records.Init(1, 3)
	return s
}

func TestPhaseTransitionHappensOnce(t *testing.T) {
	vp := Viewport{Width: 1200, Height: 800}
	s := newEntryState(vp)

	var entryRuns, activeRuns int
	sched := NewSchedule()
	sched.Register(PhaseEntry,
		Routine{Name: "entry_check", Run: EntryCheck},
		Routine{Name: "count_entry", Run: func(*TickContext) error { entryRuns++; return nil }},
	)
	sched.Register(PhaseActive,
		Routine{Name: "count_active", Run: func(*TickContext) error { activeRuns++; return nil }},
	)

	transitions := 0
	transitionTick := 0
	for tick := 1; tick <= 100 && transitions == 0; tick++ {
		before := s.Phase
		ctx := &TickContext{State: s, DT: time.Second / 60, Commands: &CommandQueue{}, Rules: DefaultRules()}
		require.Empty(t, sched.RunPhase(ctx))
		if s.Phase != before {
			transitions++
			transitionTick = tick
		}
		Integrate(s, ctx.DT)
	}

	require.Equal(t, PhaseActive, s.Phase)
	// -450 to -350 at 5 units per tick.
	assert.Equal(t, 21, transitionTick)
	assert.Equal(t, 21, entryRuns, "entry routines run through the transition tick")
	assert.Equal(t, 0, activeRuns, "active routines start on the next tick")

	actor, err := s.ActorEntity()
	require.NoError(t, err)
	assert.Equal(t, Vec2{}, actor.Velocity, "entry velocity is zeroed")

	for i := 0; i < 10; i++ {
		ctx := &TickContext{State: s, Commands: &CommandQueue{}}
		sched.RunPhase(ctx)
		assert.Equal(t, PhaseActive, s.Phase)
	}
	assert.Equal(t, 21, entryRuns)
	assert.Equal(t, 10, activeRuns)
}

func TestTransitionIsGuarded(t *testing.T) {
	s := NewState(Viewport{Width: 800, Height: 600})

	assert.True(t, s.Transition(PhaseEntry, PhaseActive))
	assert.False(t, s.Transition(PhaseEntry, PhaseActive))
	assert.Equal(t, PhaseActive, s.Phase)
}

func TestRoutinesWithoutActorReportError(t *testing.T) {
	s := NewState(Viewport{Width: 800, Height: 600})
	s.Phase = PhaseActive
	ctx := &TickContext{State: s, Commands: &CommandQueue{}, Rules: DefaultRules()}

	errs := DefaultSchedule().RunPhase(ctx)

	// movement and fire need the actor; collision does not.
	require.Len(t, errs, 2)
	for _, err := range errs {
		assert.True(t, errors.Is(err, ErrNoActor), "unexpected error %v", err)
		var re *RoutineError
		assert.True(t, errors.As(err, &re))
	}
}

func TestActiveRoutinesMoveAndFire(t *testing.T) {
	vp := Viewport{Width: 1200, Height: 800}
	s := newEntryState(vp)
	s.Phase = PhaseActive
	actor, _ := s.ActorEntity()
	actor.Position = Vec2{}

	q := &CommandQueue{}
	ctx := &TickContext{
		State:    s,
		Input:    Input{Up: true, Left: true, Fire: true},
		DT:       time.Second / 60,
		Commands: q,
		Rules:    DefaultRules(),
	}
	require.Empty(t, DefaultSchedule().RunPhase(ctx))

	assert.Equal(t, Vec2{X: -7, Y: 7}, actor.Velocity)
	cmds := q.Drain()
	require.Len(t, cmds, 1)
	assert.Equal(t, CmdSpawnProjectile, cmds[0].Kind)
}

func TestScheduleForReturnsCopy(t *testing.T) {
	sched := NewSchedule()
	sched.Register(PhaseEntry, Routine{Name: "a", Run: func(*TickContext) error { return nil }})

	rs := sched.For(PhaseEntry)
	rs[0].Name = "changed"

	assert.Equal(t, "a", sched.For(PhaseEntry)[0].Name)
	assert.Empty(t, sched.For(PhaseActive))
}
