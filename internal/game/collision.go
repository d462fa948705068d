package game

import "sort"

// ResolveContacts classifies this tick's contacts and returns the commands they cause.
// It never mutates the registry.
//
// Actor↔hostile pairs produce, in order: ReduceHealth, MarkInvulnerable,
// SpawnEffect at the hostile, RemoveEntity of the hostile. Projectile↔hostile
// pairs score for the projectile's owner and remove both. Every other pairing is
// ignored. A pair reported in both orders resolves once, and the result does not
// depend on the order of the batch.
func ResolveContacts(reg *Registry, contacts []ContactEvent) []Command {
	pairs := canonicalPairs(contacts)

	var cmds []Command
	consumed := make(map[Handle]bool)

	for _, p := range pairs {
		actor, hostile, ok := matchRoles(reg, p, RoleActor, RoleHostile)
		if !ok || hostile.Defeated || actor.Invulnerable > 0 {
			continue
		}
		cmds = append(cmds,
			ReduceHealth(actor.Owner, hostile.Tag),
			MarkInvulnerable(actor.Handle),
			SpawnEffect(EffectExplosion, hostile.Position),
			RemoveEntity(hostile.Handle),
		)
		consumed[hostile.Handle] = true
	}

	for _, p := range pairs {
		shot, hostile, ok := matchRoles(reg, p, RoleProjectile, RoleHostile)
		if !ok || hostile.Defeated || consumed[hostile.Handle] || consumed[shot.Handle] {
			continue
		}
		cmds = append(cmds,
			AddScore(shot.Owner),
			SpawnEffect(EffectExplosion, hostile.Position),
			RemoveEntity(shot.Handle),
			RemoveEntity(hostile.Handle),
		)
		consumed[hostile.Handle] = true
		consumed[shot.Handle] = true
	}

	return cmds
}

// canonicalPairs orders each pair low handle first, drops duplicates and self
// pairs, and sorts the result.
func canonicalPairs(contacts []ContactEvent) []ContactEvent {
	seen := make(map[ContactEvent]bool, len(contacts))
	pairs := make([]ContactEvent, 0, len(contacts))
	for _, c := range contacts {
		if c.A == c.B {
			continue
		}
		if c.A > c.B {
			c.A, c.B = c.B, c.A
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		pairs = append(pairs, c)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	return pairs
}

// matchRoles returns the pair's entities as (first, second) when one side has
// role first and the other role second, in either order.
func matchRoles(reg *Registry, c ContactEvent, first, second Role) (*Entity, *Entity, bool) {
	a, okA := reg.Get(c.A)
	b, okB := reg.Get(c.B)
	if !okA || !okB {
		return nil, nil, false
	}
	switch {
	case a.Role == first && b.Role == second:
		return a, b, true
	case b.Role == first && a.Role == second:
		return b, a, true
	default:
		return nil, nil, false
	}
}
