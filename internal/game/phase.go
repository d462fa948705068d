package game

import (
	"fmt"
	"time"
)

// Rules are the balance values a tick runs with.
type Rules struct {
	Fire            FireController
	EntrySpeed      float64
	StartingHealth  int
	InvulnerableFor time.Duration
	EffectLifetime  time.Duration
	ProjectileSpeed float64
	HostileSpeed    float64
}

// DefaultRules returns the reference balance.
func DefaultRules() Rules {
	return Rules{
		Fire:            NewFireController(DefaultFireCooldown),
		EntrySpeed:      5,
		StartingHealth:  3,
		InvulnerableFor: 2 * time.Second,
		EffectLifetime:  500 * time.Millisecond,
		ProjectileSpeed: 12,
		HostileSpeed:    3,
	}
}

// TickContext is what a routine sees during the resolve stage.
type TickContext struct {
	State    *State
	Input    Input
	Mode     ControlMode
	DT       time.Duration
	Contacts []ContactEvent
	Commands *CommandQueue
	Rules    Rules
}

// Routine is a named update step registered for one phase.
type Routine struct {
	Name string
	Run  func(ctx *TickContext) error
}

// Schedule maps each phase to the routines that run while it is current.
type Schedule struct {
	routines map[Phase][]Routine
}

// NewSchedule creates an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{routines: make(map[Phase][]Routine)}
}

// Register appends routines to a phase in run order.
func (s *Schedule) Register(p Phase, routines ...Routine) {
	s.routines[p] = append(s.routines[p], routines...)
}

// For returns the routines of a phase. The slice is a copy, so the set picked
// at the start of a tick does not change if the phase changes mid-tick.
func (s *Schedule) For(p Phase) []Routine {
	rs := s.routines[p]
	out := make([]Routine, len(rs))
	copy(out, rs)
	return out
}

// RoutineError names the routine that failed.
type RoutineError struct {
	Routine string
	Err     error
}

func (e *RoutineError) Error() string {
	return fmt.Sprintf("routine %s: %v", e.Routine, e.Err)
}

func (e *RoutineError) Unwrap() error { return e.Err }

// RunPhase runs the routines of the phase current at call time. A failing
// routine is skipped and its error collected; the rest still run.
func (s *Schedule) RunPhase(ctx *TickContext) []error {
	var errs []error
	for _, r := range s.For(ctx.State.Phase) {
		if err := r.Run(ctx); err != nil {
			errs = append(errs, &RoutineError{Routine: r.Name, Err: err})
		}
	}
	return errs
}

// DefaultSchedule wires the standard routines: the entry check while in Entry,
// and movement, firing and collision while Active.
func DefaultSchedule() *Schedule {
	s := NewSchedule()
	s.Register(PhaseEntry, Routine{Name: "entry_check", Run: EntryCheck})
	s.Register(PhaseActive,
		Routine{Name: "movement", Run: Movement},
		Routine{Name: "fire", Run: Fire},
		Routine{Name: "collision", Run: Collision},
	)
	return s
}

// EntryCheck ends the entry flight once the actor is inside the bottom edge.
func EntryCheck(ctx *TickContext) error {
	actor, err := ctx.State.ActorEntity()
	if err != nil {
		return err
	}

	edges := ComputeEdges(ctx.State.Viewport, actor.Size)
	if actor.Position.Y < edges.Bottom {
		return nil
	}

	actor.Velocity = Vec2{}
	ctx.State.Transition(PhaseEntry, PhaseActive)
	return nil
}

// Movement resolves the actor's velocity from the input.
func Movement(ctx *TickContext) error {
	actor, err := ctx.State.ActorEntity()
	if err != nil {
		return err
	}

	vp := ctx.State.Viewport
	motion := ctx.Input.MotionFor(ctx.Mode)
	actor.Velocity = ResolveVelocity(motion, actor.Position, ComputeEdges(vp, actor.Size), SpeedFor(vp))
	return nil
}

// Fire runs the fire controller for the actor.
func Fire(ctx *TickContext) error {
	actor, err := ctx.State.ActorEntity()
	if err != nil {
		return err
	}

	ctx.Rules.Fire.Update(actor, ctx.Input.FireAsserted(ctx.Mode), ctx.DT, ctx.Commands)
	return nil
}

// Collision turns this tick's contacts into commands.
func Collision(ctx *TickContext) error {
	ctx.Commands.Push(ResolveContacts(ctx.State.Registry, ctx.Contacts)...)
	return nil
}
