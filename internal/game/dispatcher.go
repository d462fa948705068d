package game

// Sizes of entities the dispatcher spawns.
var (
	ProjectileSize = Vec2{X: 10, Y: 20}
	ExplosionSize  = Vec2{X: 80, Y: 80}
	HostileSize    = Vec2{X: 60, Y: 60}
)

// DamageConfirmed reports that a hostile hit a player.
type DamageConfirmed struct {
	Owner    uint8  `json:"owner"`
	EnemyTag uint16 `json:"enemyTag"`
	Health   int    `json:"health"`
}

// Outcome summarises what a batch of commands did.
type Outcome struct {
	Damaged     []DamageConfirmed
	GameOver    []uint8  // owners whose health reached zero in this batch
	Projectiles []Handle // projectiles spawned
	Destroyed   []uint16 // tags of hostiles removed
	Scored      []uint8
	Removed     int
	Dropped     int // spawns refused by resource limits
	Applied     map[CommandKind]int
}

// Dispatcher applies commands after every resolver of the tick has run.
// It is the only writer of records and the only place entities are spawned
// or removed during a tick.
type Dispatcher struct {
	Rules  Rules
	Limits ResourceLimits
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(rules Rules, limits ResourceLimits) *Dispatcher {
	return &Dispatcher{Rules: rules, Limits: limits}
}

// Apply executes cmds in order. Commands that reference entities or records
// that no longer exist are no-ops.
func (d *Dispatcher) Apply(s *State, cmds []Command) Outcome {
	out := Outcome{Applied: make(map[CommandKind]int)}

	for _, c := range cmds {
		if d.apply(s, c, &out) {
			out.Applied[c.Kind]++
		}
	}

	return out
}

func (d *Dispatcher) apply(s *State, c Command, out *Outcome) bool {
	reg := s.Registry

	switch c.Kind {
	case CmdReduceHealth:
		rec, ok := s.Records.Get(c.Owner)
		if !ok {
			return false
		}
		wasAlive := rec.Alive()
		rec.Health--
		out.Damaged = append(out.Damaged, DamageConfirmed{Owner: c.Owner, EnemyTag: c.Cause, Health: rec.Health})
		if wasAlive && !rec.Alive() {
			out.GameOver = append(out.GameOver, c.Owner)
		}

	case CmdMarkInvulnerable:
		e, ok := reg.Get(c.Target)
		if !ok {
			return false
		}
		e.Invulnerable = d.Rules.InvulnerableFor

	case CmdSpawnEffect:
		if d.Limits.MaxEffects > 0 && reg.Count(RoleEffect) >= d.Limits.MaxEffects {
			out.Dropped++
			return false
		}
		reg.Spawn(Entity{
			Role:     RoleEffect,
			Position: c.Position,
			Size:     ExplosionSize,
			Effect:   c.Effect,
			Lifetime: d.Rules.EffectLifetime,
		})

	case CmdRemoveEntity:
		e, ok := reg.Get(c.Target)
		if !ok {
			return false
		}
		if e.Role == RoleHostile {
			e.Defeated = true
			out.Destroyed = append(out.Destroyed, e.Tag)
		}
		reg.Remove(c.Target)
		out.Removed++

	case CmdSpawnProjectile:
		if d.Limits.MaxProjectiles > 0 && reg.Count(RoleProjectile) >= d.Limits.MaxProjectiles {
			out.Dropped++
			return false
		}
		h := reg.Spawn(Entity{
			Role:     RoleProjectile,
			Position: c.Position,
			Velocity: Vec2{Y: d.Rules.ProjectileSpeed},
			Size:     ProjectileSize,
			Owner:    c.Owner,
		})
		out.Projectiles = append(out.Projectiles, h)

	case CmdAddScore:
		rec, ok := s.Records.Get(c.Owner)
		if !ok {
			return false
		}
		rec.Score++
		out.Scored = append(out.Scored, c.Owner)

	default:
		return false
	}

	return true
}
