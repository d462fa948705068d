package game

import (
	"sort"
	"time"
)

// Handle is a stable entity identifier. Handles are never reused within a registry.
type Handle uint32

// InvalidHandle is never issued.
const InvalidHandle Handle = 0

// Role discriminates what an entity is and which interactions it takes part in.
type Role uint8

const (
	RoleNone Role = iota
	RoleActor
	RoleHostile
	RoleProjectile
	RoleEffect
	RolePeer
)

func (r Role) String() string {
	switch r {
	case RoleActor:
		return "actor"
	case RoleHostile:
		return "hostile"
	case RoleProjectile:
		return "projectile"
	case RoleEffect:
		return "effect"
	case RolePeer:
		return "peer"
	default:
		return "none"
	}
}

// Collidable reports whether entities of this role take part in contact detection.
func (r Role) Collidable() bool {
	return r == RoleActor || r == RoleHostile || r == RoleProjectile
}

// Roles lists every concrete role in a stable order.
var Roles = []Role{RoleActor, RoleHostile, RoleProjectile, RoleEffect, RolePeer}

// EffectKind identifies a visual effect.
type EffectKind uint8

const (
	EffectExplosion EffectKind = iota + 1
)

func (k EffectKind) String() string {
	if k == EffectExplosion {
		return "explosion"
	}
	return "unknown"
}

// Entity is a registry slot. Fields that do not apply to the entity's role stay zero.
type Entity struct {
	Handle   Handle
	Role     Role
	Position Vec2
	Velocity Vec2
	Size     Vec2

	// Owner is the player tag of an actor, projectile or peer.
	Owner uint8
	// Tag is the network tag of a hostile.
	Tag uint16
	// Defeated hostiles no longer take part in collisions.
	Defeated bool

	// Actor state
	Cooldown     *CooldownTimer
	Invulnerable time.Duration

	// Effect state
	Effect   EffectKind
	Lifetime time.Duration
}

// Registry is an arena of entities with a role index.
type Registry struct {
	next     Handle
	entities map[Handle]*Entity
	byRole   map[Role][]Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[Handle]*Entity),
		byRole:   make(map[Role][]Handle),
	}
}

// Spawn inserts the entity and returns its new handle.
func (r *Registry) Spawn(e Entity) Handle {
	r.next++
	e.Handle = r.next
	r.entities[e.Handle] = &e
	r.byRole[e.Role] = append(r.byRole[e.Role], e.Handle)
	return e.Handle
}

// Get returns the entity for h.
func (r *Registry) Get(h Handle) (*Entity, bool) {
	e, ok := r.entities[h]
	return e, ok
}

// Remove deletes h. It returns false if h was not live; that is not an error.
func (r *Registry) Remove(h Handle) bool {
	e, ok := r.entities[h]
	if !ok {
		return false
	}
	delete(r.entities, h)

	handles := r.byRole[e.Role]
	i := sort.Search(len(handles), func(i int) bool { return handles[i] >= h })
	if i < len(handles) && handles[i] == h {
		r.byRole[e.Role] = append(handles[:i], handles[i+1:]...)
	}
	return true
}

// ByRole returns the live handles of a role in spawn order. The slice is a copy.
func (r *Registry) ByRole(role Role) []Handle {
	handles := r.byRole[role]
	out := make([]Handle, len(handles))
	copy(out, handles)
	return out
}

// Count returns the number of live entities with the role.
func (r *Registry) Count(role Role) int {
	return len(r.byRole[role])
}

// Len returns the number of live entities.
func (r *Registry) Len() int {
	return len(r.entities)
}

// Each calls fn for every live entity of the role in spawn order.
// fn must not spawn or remove entities.
func (r *Registry) Each(role Role, fn func(e *Entity)) {
	for _, h := range r.byRole[role] {
		fn(r.entities[h])
	}
}

// HostileByTag finds a live hostile by its network tag.
func (r *Registry) HostileByTag(tag uint16) (*Entity, bool) {
	for _, h := range r.byRole[RoleHostile] {
		if e := r.entities[h]; e.Tag == tag {
			return e, true
		}
	}
	return nil, false
}

// PeerByOwner finds a remote player ghost by owner tag.
func (r *Registry) PeerByOwner(owner uint8) (*Entity, bool) {
	for _, h := range r.byRole[RolePeer] {
		if e := r.entities[h]; e.Owner == owner {
			return e, true
		}
	}
	return nil, false
}
