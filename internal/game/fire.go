package game

import "time"

// DefaultFireCooldown is the minimum time between two shots.
const DefaultFireCooldown = 100 * time.Millisecond

// CooldownTimer counts up to Duration. A nil timer means the action is ready.
type CooldownTimer struct {
	Duration time.Duration
	Elapsed  time.Duration
}

// NewCooldownTimer starts a timer for d.
func NewCooldownTimer(d time.Duration) *CooldownTimer {
	return &CooldownTimer{Duration: d}
}

// Advance adds dt and reports whether the timer has finished.
func (c *CooldownTimer) Advance(dt time.Duration) bool {
	c.Elapsed += dt
	return c.Finished()
}

// Finished reports whether elapsed time has reached the duration.
func (c *CooldownTimer) Finished() bool {
	return c.Elapsed >= c.Duration
}

// Remaining returns the time left before the timer finishes.
func (c *CooldownTimer) Remaining() time.Duration {
	if c.Finished() {
		return 0
	}
	return c.Duration - c.Elapsed
}

// FireController gates projectile spawns behind a cooldown.
type FireController struct {
	Cooldown time.Duration
}

// NewFireController creates a controller. Non-positive cooldowns use DefaultFireCooldown.
func NewFireController(cooldown time.Duration) FireController {
	if cooldown <= 0 {
		cooldown = DefaultFireCooldown
	}
	return FireController{Cooldown: cooldown}
}

// Update advances the actor's cooldown by dt, then fires if asked and ready.
// It returns true when a SpawnProjectile command was queued.
func (f FireController) Update(actor *Entity, fire bool, dt time.Duration, q *CommandQueue) bool {
	if actor.Cooldown != nil && actor.Cooldown.Advance(dt) {
		actor.Cooldown = nil
	}

	if !fire || actor.Cooldown != nil {
		return false
	}

	q.Push(SpawnProjectile(actor.Owner, actor.Position))
	actor.Cooldown = NewCooldownTimer(f.Cooldown)
	return true
}
