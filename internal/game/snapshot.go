package game

import (
	"sync/atomic"
	"time"
)

// ResourceLimits defines hard caps on live entities.
type ResourceLimits struct {
	MaxHostiles    int
	MaxProjectiles int
	MaxEffects     int
	MaxPeers       int
}

// DefaultLimits provides production-safe default limits
var DefaultLimits = ResourceLimits{
	MaxHostiles:    64,
	MaxProjectiles: 30,
	MaxEffects:     20,
	MaxPeers:       8,
}

// Total returns the maximum number of live entities including the actor.
func (l ResourceLimits) Total() int {
	return 1 + l.MaxHostiles + l.MaxProjectiles + l.MaxEffects + l.MaxPeers
}

// EntitySnapshot is an immutable copy of one entity for rendering and transport.
type EntitySnapshot struct {
	Handle       Handle  `json:"handle"`
	Role         string  `json:"role"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	VX           float64 `json:"vx"`
	VY           float64 `json:"vy"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Owner        uint8   `json:"owner,omitempty"`
	Tag          uint16  `json:"tag,omitempty"`
	Invulnerable bool    `json:"invulnerable,omitempty"`
}

// Snapshot is a complete immutable view of the match after a tick.
type Snapshot struct {
	Sequence  uint64    `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	Tick      uint64    `json:"tick"`
	MatchID   string    `json:"matchId"`
	Phase     string    `json:"phase"`
	Viewport  Viewport  `json:"viewport"`

	Actor       *EntitySnapshot  `json:"actor,omitempty"`
	Hostiles    []EntitySnapshot `json:"hostiles"`
	Projectiles []EntitySnapshot `json:"projectiles"`
	Effects     []EntitySnapshot `json:"effects"`
	Peers       []EntitySnapshot `json:"peers"`
	Records     []PlayerRecord   `json:"records"`
	GameOver    bool             `json:"gameOver"`
}

// EntityCount returns the number of entities in the snapshot.
func (s *Snapshot) EntityCount() int {
	n := len(s.Hostiles) + len(s.Projectiles) + len(s.Effects) + len(s.Peers)
	if s.Actor != nil {
		n++
	}
	return n
}

func snapshotEntity(e *Entity) EntitySnapshot {
	return EntitySnapshot{
		Handle:       e.Handle,
		Role:         e.Role.String(),
		X:            e.Position.X,
		Y:            e.Position.Y,
		VX:           e.Velocity.X,
		VY:           e.Velocity.Y,
		Width:        e.Size.X,
		Height:       e.Size.Y,
		Owner:        e.Owner,
		Tag:          e.Tag,
		Invulnerable: e.Invulnerable > 0,
	}
}

// BuildSnapshot copies the state into a fresh snapshot.
func BuildSnapshot(s *State, matchID string, gameOver bool) *Snapshot {
	snap := &Snapshot{
		Timestamp:   time.Now(),
		Tick:        s.Tick,
		MatchID:     matchID,
		Phase:       s.Phase.String(),
		Viewport:    s.Viewport,
		Hostiles:    make([]EntitySnapshot, 0, s.Registry.Count(RoleHostile)),
		Projectiles: make([]EntitySnapshot, 0, s.Registry.Count(RoleProjectile)),
		Effects:     make([]EntitySnapshot, 0, s.Registry.Count(RoleEffect)),
		Peers:       make([]EntitySnapshot, 0, s.Registry.Count(RolePeer)),
		Records:     s.Records.All(),
		GameOver:    gameOver,
	}

	if actor, err := s.ActorEntity(); err == nil {
		a := snapshotEntity(actor)
		snap.Actor = &a
	}
	s.Registry.Each(RoleHostile, func(e *Entity) { snap.Hostiles = append(snap.Hostiles, snapshotEntity(e)) })
	s.Registry.Each(RoleProjectile, func(e *Entity) { snap.Projectiles = append(snap.Projectiles, snapshotEntity(e)) })
	s.Registry.Each(RoleEffect, func(e *Entity) { snap.Effects = append(snap.Effects, snapshotEntity(e)) })
	s.Registry.Each(RolePeer, func(e *Entity) { snap.Peers = append(snap.Peers, snapshotEntity(e)) })

	return snap
}

// SnapshotStore publishes the latest snapshot for lock-free readers.
type SnapshotStore struct {
	latest   atomic.Pointer[Snapshot]
	sequence atomic.Uint64
}

// Publish stamps snap with the next sequence number and makes it current.
// snap must not be modified afterwards.
func (p *SnapshotStore) Publish(snap *Snapshot) {
	snap.Sequence = p.sequence.Add(1)
	p.latest.Store(snap)
}

// Latest returns the most recent snapshot, or nil before the first publish.
func (p *SnapshotStore) Latest() *Snapshot {
	return p.latest.Load()
}
