package protocol

import "ufo-shooter/internal/game"

// ToVec2 converts a wire position to world coordinates.
func (p Position) ToVec2() game.Vec2 {
	return game.Vec2{X: float64(p[0]), Y: float64(p[1])}
}

// PositionOf converts world coordinates to a wire position.
func PositionOf(v game.Vec2) Position {
	return Position{float32(v.X), float32(v.Y)}
}

// ToVec2 converts a wire velocity to world units per tick.
func (v Velocity) ToVec2() game.Vec2 {
	return game.Vec2{X: float64(v[0]), Y: float64(v[1])}
}

// VelocityOf converts a world velocity to the wire form.
func VelocityOf(v game.Vec2) Velocity {
	return Velocity{float32(v.X), float32(v.Y)}
}

// ToGame converts client input to the engine's control snapshot.
func (in Input) ToGame() game.Input {
	return game.Input{
		Up:     in.Up,
		Down:   in.Down,
		Left:   in.Left,
		Right:  in.Right,
		Fire:   in.Fire,
		Analog: game.ParseMotion(in.Analog),
	}
}

// FromSnapshot builds the UpdatePosition broadcast for the local actor.
// It reports false when the snapshot has no actor.
func FromSnapshot(snap *game.Snapshot, playerTag uint8) (Message, bool) {
	if snap == nil || snap.Actor == nil {
		return Message{}, false
	}
	bullets := make([]Position, 0, len(snap.Projectiles))
	for _, p := range snap.Projectiles {
		if p.Owner == playerTag {
			bullets = append(bullets, Position{float32(p.X), float32(p.Y)})
		}
	}
	pos := Position{float32(snap.Actor.X), float32(snap.Actor.Y)}
	return NewUpdatePosition(playerTag, pos, bullets), true
}

// FromSpawned builds the SpawnEnemy announcement for a hostile.
func FromSpawned(h game.EntitySnapshot) Message {
	return NewSpawnEnemy(h.Tag,
		Position{float32(h.X), float32(h.Y)},
		Velocity{float32(h.VX), float32(h.VY)})
}

// FromDamage builds the ConfirmDamaged notification.
func FromDamage(d game.DamageConfirmed) Message {
	return NewConfirmDamaged(d.Owner, d.EnemyTag)
}
