package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collisionFixture struct {
	reg      *Registry
	actor    Handle
	hostileA Handle
	hostileB Handle
	hostileC Handle
	shot     Handle
}

func newCollisionFixture() collisionFixture {
	reg := NewRegistry()
	f := collisionFixture{reg: reg}
	f.actor = reg.Spawn(Entity{Role: RoleActor, Owner: 1, Size: ReducedActorSize})
	f.hostileA = reg.Spawn(Entity{Role: RoleHostile, Tag: 10, Position: Vec2{X: 5, Y: 5}, Size: HostileSize})
	f.hostileB = reg.Spawn(Entity{Role: RoleHostile, Tag: 11, Position: Vec2{X: -5, Y: 5}, Size: HostileSize})
	f.hostileC = reg.Spawn(Entity{Role: RoleHostile, Tag: 12, Position: Vec2{X: 40, Y: 5}, Size: HostileSize})
	f.shot = reg.Spawn(Entity{Role: RoleProjectile, Owner: 1, Position: Vec2{X: 40}, Size: ProjectileSize})
	return f
}

func TestResolveContactsBothOrderings(t *testing.T) {
	f := newCollisionFixture()
	hostileA, _ := f.reg.Get(f.hostileA)
	hostileB, _ := f.reg.Get(f.hostileB)

	cmds := ResolveContacts(f.reg, []ContactEvent{
		{A: f.actor, B: f.hostileA},
		{A: f.hostileB, B: f.actor},
		{A: f.hostileA, B: f.hostileC},
	})

	want := []Command{
		ReduceHealth(1, 10),
		MarkInvulnerable(f.actor),
		SpawnEffect(EffectExplosion, hostileA.Position),
		RemoveEntity(f.hostileA),
		ReduceHealth(1, 11),
		MarkInvulnerable(f.actor),
		SpawnEffect(EffectExplosion, hostileB.Position),
		RemoveEntity(f.hostileB),
	}
	assert.Equal(t, want, cmds)
}

func TestResolveContactsIgnoresBatchOrder(t *testing.T) {
	f := newCollisionFixture()
	contacts := []ContactEvent{
		{A: f.actor, B: f.hostileA},
		{A: f.hostileB, B: f.actor},
		{A: f.shot, B: f.hostileC},
	}
	reversed := []ContactEvent{contacts[2], contacts[1], contacts[0]}

	assert.Equal(t, ResolveContacts(f.reg, contacts), ResolveContacts(f.reg, reversed))
}

func TestResolveContactsIgnoresUnrelatedPairs(t *testing.T) {
	f := newCollisionFixture()

	tests := []struct {
		name     string
		contacts []ContactEvent
	}{
		{"hostile and hostile", []ContactEvent{{A: f.hostileA, B: f.hostileB}}},
		{"actor and projectile", []ContactEvent{{A: f.actor, B: f.shot}}},
		{"self pair", []ContactEvent{{A: f.actor, B: f.actor}}},
		{"stale handle", []ContactEvent{{A: f.actor, B: Handle(999)}}},
		{"empty batch", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if cmds := ResolveContacts(f.reg, tt.contacts); len(cmds) != 0 {
				t.Errorf("Expected no commands, got %v", cmds)
			}
		})
	}
}

func TestResolveContactsDuplicatePairResolvesOnce(t *testing.T) {
	f := newCollisionFixture()

	cmds := ResolveContacts(f.reg, []ContactEvent{
		{A: f.actor, B: f.hostileA},
		{A: f.hostileA, B: f.actor},
	})

	assert.Len(t, cmds, 4)
}

func TestResolveContactsInvulnerableActor(t *testing.T) {
	f := newCollisionFixture()
	actor, _ := f.reg.Get(f.actor)
	actor.Invulnerable = DefaultRules().InvulnerableFor

	cmds := ResolveContacts(f.reg, []ContactEvent{{A: f.actor, B: f.hostileA}})
	assert.Empty(t, cmds)
}

func TestResolveContactsSkipsDefeatedHostile(t *testing.T) {
	f := newCollisionFixture()
	hostile, _ := f.reg.Get(f.hostileA)
	hostile.Defeated = true

	assert.Empty(t, ResolveContacts(f.reg, []ContactEvent{{A: f.actor, B: f.hostileA}}))
}

func TestResolveContactsProjectileHit(t *testing.T) {
	f := newCollisionFixture()
	hostileC, _ := f.reg.Get(f.hostileC)

	cmds := ResolveContacts(f.reg, []ContactEvent{{A: f.hostileC, B: f.shot}})

	require.Len(t, cmds, 4)
	assert.Equal(t, AddScore(1), cmds[0])
	assert.Equal(t, SpawnEffect(EffectExplosion, hostileC.Position), cmds[1])
	assert.Equal(t, RemoveEntity(f.shot), cmds[2])
	assert.Equal(t, RemoveEntity(f.hostileC), cmds[3])
}

func TestResolveContactsActorTakesPriorityOverProjectile(t *testing.T) {
	f := newCollisionFixture()

	cmds := ResolveContacts(f.reg, []ContactEvent{
		{A: f.shot, B: f.hostileA},
		{A: f.actor, B: f.hostileA},
	})

	require.Len(t, cmds, 4)
	assert.Equal(t, CmdReduceHealth, cmds[0].Kind)
	for _, c := range cmds {
		assert.NotEqual(t, CmdAddScore, c.Kind)
	}
}

func TestResolveContactsDoesNotMutate(t *testing.T) {
	f := newCollisionFixture()
	before := f.reg.Len()

	ResolveContacts(f.reg, []ContactEvent{{A: f.actor, B: f.hostileA}})

	assert.Equal(t, before, f.reg.Len())
	hostile, ok := f.reg.Get(f.hostileA)
	require.True(t, ok)
	assert.False(t, hostile.Defeated)
}
