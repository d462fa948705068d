package game

import (
	"math"
	"math/rand"
	"time"
)

// Integrate moves entities by their velocity and advances per-entity timers.
// It runs after the dispatcher, so commands applied this tick are already visible.
// Entities that have left the playfield or expired are removed; the count is returned.
func Integrate(s *State, dt time.Duration) int {
	reg := s.Registry
	vp := s.Viewport
	var expired []Handle

	reg.Each(RoleActor, func(e *Entity) {
		e.Position = e.Position.Add(e.Velocity)
		if s.Phase == PhaseActive {
			edges := ComputeEdges(vp, e.Size)
			e.Position.X = clamp(e.Position.X, edges.Left, edges.Right)
			e.Position.Y = clamp(e.Position.Y, edges.Bottom, edges.Top)
		}
		if e.Invulnerable > 0 {
			e.Invulnerable -= dt
			if e.Invulnerable < 0 {
				e.Invulnerable = 0
			}
		}
	})

	reg.Each(RoleHostile, func(e *Entity) {
		e.Position = e.Position.Add(e.Velocity)
		leavingTop := e.Velocity.Y > 0 && e.Position.Y > TopOut(vp, e.Size)
		if leavingTop || e.Position.Y < BottomOut(vp, e.Size) || math.Abs(e.Position.X) > vp.Width/2+e.Size.X {
			expired = append(expired, e.Handle)
		}
	})

	reg.Each(RoleProjectile, func(e *Entity) {
		e.Position = e.Position.Add(e.Velocity)
		if e.Position.Y > TopOut(vp, e.Size) {
			expired = append(expired, e.Handle)
		}
	})

	reg.Each(RoleEffect, func(e *Entity) {
		e.Lifetime -= dt
		if e.Lifetime <= 0 {
			expired = append(expired, e.Handle)
		}
	})

	for _, h := range expired {
		reg.Remove(h)
	}
	return len(expired)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Spawner drops hostiles from above the viewport at a fixed interval.
type Spawner struct {
	Every   time.Duration
	Speed   float64
	elapsed time.Duration
	nextTag uint16
	rng     *rand.Rand
}

// NewSpawner creates a spawner. A non-positive interval disables it.
func NewSpawner(every time.Duration, speed float64, seed int64) *Spawner {
	return &Spawner{
		Every: every,
		Speed: speed,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Enabled reports whether the spawner produces hostiles.
func (sp *Spawner) Enabled() bool {
	return sp.Every > 0
}

// NextTag returns the next hostile tag not live in reg. Zero is skipped.
func (sp *Spawner) NextTag(reg *Registry) uint16 {
	for {
		sp.nextTag++
		if sp.nextTag == 0 {
			continue
		}
		if _, taken := reg.HostileByTag(sp.nextTag); !taken {
			return sp.nextTag
		}
	}
}

// Update advances the interval and spawns at most one hostile per elapsed interval,
// respecting maxHostiles when positive.
func (sp *Spawner) Update(s *State, dt time.Duration, maxHostiles int) []*Entity {
	if !sp.Enabled() {
		return nil
	}

	sp.elapsed += dt
	var spawned []*Entity
	for sp.elapsed >= sp.Every {
		sp.elapsed -= sp.Every
		if maxHostiles > 0 && s.Registry.Count(RoleHostile) >= maxHostiles {
			continue
		}

		edges := ComputeEdges(s.Viewport, HostileSize)
		x := edges.Left + sp.rng.Float64()*(edges.Right-edges.Left)
		h := s.Registry.Spawn(Entity{
			Role:     RoleHostile,
			Position: Vec2{X: x, Y: TopOut(s.Viewport, HostileSize)},
			Velocity: Vec2{Y: -sp.Speed},
			Size:     HostileSize,
			Tag:      sp.NextTag(s.Registry),
		})
		e, _ := s.Registry.Get(h)
		spawned = append(spawned, e)
	}
	return spawned
}
