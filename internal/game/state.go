package game

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNoActor is returned by routines that need the controlled actor when none is live.
var ErrNoActor = errors.New("no controlled actor")

// Phase is the coarse match state.
type Phase uint8

const (
	PhaseEntry Phase = iota
	PhaseActive
)

func (p Phase) String() string {
	switch p {
	case PhaseEntry:
		return "entry"
	case PhaseActive:
		return "active"
	default:
		return "unknown"
	}
}

// PlayerRecord tracks health and score for one player tag.
type PlayerRecord struct {
	Tag    uint8 `json:"tag"`
	Health int   `json:"health"`
	Score  int   `json:"score"`
}

// Alive reports whether the player still has health left.
func (r PlayerRecord) Alive() bool {
	return r.Health > 0
}

// Records holds player records keyed by owner tag.
type Records struct {
	byTag map[uint8]*PlayerRecord
}

// NewRecords creates an empty record set.
func NewRecords() *Records {
	return &Records{byTag: make(map[uint8]*PlayerRecord)}
}

// Init (re)creates the record for tag with the given health and zero score.
func (r *Records) Init(tag uint8, health int) *PlayerRecord {
	rec := &PlayerRecord{Tag: tag, Health: health}
	r.byTag[tag] = rec
	return rec
}

// Get returns the record for tag.
func (r *Records) Get(tag uint8) (*PlayerRecord, bool) {
	rec, ok := r.byTag[tag]
	return rec, ok
}

// All returns copies of every record ordered by tag.
func (r *Records) All() []PlayerRecord {
	out := make([]PlayerRecord, 0, len(r.byTag))
	for _, rec := range r.byTag {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// State is the single owned match state passed into every tick.
// Resolvers write only their own entity's fields; the Dispatcher writes
// records and performs spawns and removals.
type State struct {
	Phase    Phase
	Viewport Viewport
	Registry *Registry
	Records  *Records
	Actor    Handle
	Tick     uint64
}

// NewState creates an empty state in the Entry phase.
func NewState(vp Viewport) *State {
	return &State{
		Phase:    PhaseEntry,
		Viewport: vp,
		Registry: NewRegistry(),
		Records:  NewRecords(),
	}
}

// ActorEntity returns the controlled actor.
func (s *State) ActorEntity() (*Entity, error) {
	if s.Actor == InvalidHandle {
		return nil, ErrNoActor
	}
	e, ok := s.Registry.Get(s.Actor)
	if !ok {
		return nil, fmt.Errorf("actor %d: %w", s.Actor, ErrNoActor)
	}
	return e, nil
}

// Transition moves from one phase to another only if the state is currently in from.
// It returns whether the transition happened.
func (s *State) Transition(from, to Phase) bool {
	if s.Phase != from {
		return false
	}
	s.Phase = to
	return true
}
