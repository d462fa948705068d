package game

import "fmt"

// CommandKind tags a deferred side effect.
type CommandKind uint8

const (
	CmdReduceHealth CommandKind = iota + 1
	CmdMarkInvulnerable
	CmdSpawnEffect
	CmdRemoveEntity
	CmdSpawnProjectile
	CmdAddScore
)

func (k CommandKind) String() string {
	switch k {
	case CmdReduceHealth:
		return "reduce_health"
	case CmdMarkInvulnerable:
		return "mark_invulnerable"
	case CmdSpawnEffect:
		return "spawn_effect"
	case CmdRemoveEntity:
		return "remove_entity"
	case CmdSpawnProjectile:
		return "spawn_projectile"
	case CmdAddScore:
		return "add_score"
	default:
		return "unknown"
	}
}

// Command is a side effect produced during resolution and applied by the Dispatcher.
// Which fields are meaningful depends on Kind.
type Command struct {
	Kind     CommandKind
	Owner    uint8      // ReduceHealth, SpawnProjectile, AddScore
	Target   Handle     // MarkInvulnerable, RemoveEntity
	Effect   EffectKind // SpawnEffect
	Position Vec2       // SpawnEffect, SpawnProjectile

	// Cause is the hostile tag behind a ReduceHealth, reported to the transport.
	Cause uint16
}

func (c Command) String() string {
	switch c.Kind {
	case CmdReduceHealth, CmdAddScore:
		return fmt.Sprintf("%s(owner=%d)", c.Kind, c.Owner)
	case CmdMarkInvulnerable, CmdRemoveEntity:
		return fmt.Sprintf("%s(%d)", c.Kind, c.Target)
	case CmdSpawnEffect:
		return fmt.Sprintf("%s(%s @ %.1f,%.1f)", c.Kind, c.Effect, c.Position.X, c.Position.Y)
	case CmdSpawnProjectile:
		return fmt.Sprintf("%s(owner=%d @ %.1f,%.1f)", c.Kind, c.Owner, c.Position.X, c.Position.Y)
	default:
		return c.Kind.String()
	}
}

// ReduceHealth decrements the record of owner. cause is the hostile's tag.
func ReduceHealth(owner uint8, cause uint16) Command {
	return Command{Kind: CmdReduceHealth, Owner: owner, Cause: cause}
}

// MarkInvulnerable makes the actor briefly exempt from contact damage.
func MarkInvulnerable(actor Handle) Command {
	return Command{Kind: CmdMarkInvulnerable, Target: actor}
}

// SpawnEffect places a visual effect.
func SpawnEffect(kind EffectKind, pos Vec2) Command {
	return Command{Kind: CmdSpawnEffect, Effect: kind, Position: pos}
}

// RemoveEntity queues h for deletion.
func RemoveEntity(h Handle) Command {
	return Command{Kind: CmdRemoveEntity, Target: h}
}

// SpawnProjectile fires a projectile owned by owner from pos.
func SpawnProjectile(owner uint8, pos Vec2) Command {
	return Command{Kind: CmdSpawnProjectile, Owner: owner, Position: pos}
}

// AddScore credits owner with one point.
func AddScore(owner uint8) Command {
	return Command{Kind: CmdAddScore, Owner: owner}
}

// CommandQueue collects commands in emission order for one tick.
type CommandQueue struct {
	cmds []Command
}

// Push appends commands.
func (q *CommandQueue) Push(cmds ...Command) {
	q.cmds = append(q.cmds, cmds...)
}

// Len returns the number of queued commands.
func (q *CommandQueue) Len() int {
	return len(q.cmds)
}

// Drain returns the queued commands and empties the queue.
func (q *CommandQueue) Drain() []Command {
	cmds := q.cmds
	q.cmds = nil
	return cmds
}
