package game

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"ufo-shooter/internal/config"
)

var (
	// ErrLimitReached is returned when a spawn would exceed a resource limit.
	ErrLimitReached = errors.New("resource limit reached")
	// ErrDuplicateTag is returned when a hostile tag is already live.
	ErrDuplicateTag = errors.New("hostile tag already in use")
	// ErrNoMatch is returned by operations that need a started match.
	ErrNoMatch = errors.New("no match in progress")
)

// EngineConfig holds everything the engine needs to run a match.
type EngineConfig struct {
	TickRate     int
	Viewport     Viewport
	Rules        Rules
	Limits       ResourceLimits
	GridCellSize float64
	PlayerTag    uint8
	SpawnEvery   time.Duration
	Seed         int64
}

// DefaultEngineConfig returns the reference configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		TickRate:     60,
		Viewport:     Viewport{Width: FullWindowWidth, Height: 800},
		Rules:        DefaultRules(),
		Limits:       DefaultLimits,
		GridCellSize: 100,
		PlayerTag:    1,
		Seed:         1,
	}
}

// EngineConfigFrom maps application configuration onto the engine.
func EngineConfigFrom(app config.AppConfig) EngineConfig {
	gp := app.Gameplay
	return EngineConfig{
		TickRate: gp.TickRate,
		Viewport: Viewport{
			Width:     app.Viewport.Width,
			Height:    app.Viewport.Height,
			FullWidth: app.Viewport.FullWindowWidth,
		},
		Rules: Rules{
			Fire:            NewFireController(gp.FireCooldown),
			EntrySpeed:      gp.EntrySpeed,
			StartingHealth:  gp.StartingHealth,
			InvulnerableFor: gp.InvulnerableFor,
			EffectLifetime:  gp.EffectLifetime,
			ProjectileSpeed: gp.ProjectileSpeed,
			HostileSpeed:    gp.HostileSpeed,
		},
		Limits: ResourceLimits{
			MaxHostiles:    app.Limits.MaxHostiles,
			MaxProjectiles: app.Limits.MaxProjectiles,
			MaxEffects:     app.Limits.MaxEffects,
			MaxPeers:       app.Limits.MaxPeers,
		},
		GridCellSize: float64(app.Spatial.GridCellSize),
		PlayerTag:    gp.PlayerTag,
		SpawnEvery:   gp.HostileSpawnEvery,
		Seed:         gp.RandomSeed,
	}
}

// PhaseChange records a phase transition within a tick.
type PhaseChange struct {
	From Phase
	To   Phase
}

// TickResult describes what one tick did.
type TickResult struct {
	Tick        uint64
	Duration    time.Duration
	Phase       Phase
	PhaseChange *PhaseChange
	Contacts    int
	Commands    []Command
	Outcome     Outcome
	Fired       []EntitySnapshot
	Spawned     []EntitySnapshot
	Culled      int
	Errors      []error
}

// Hooks are called after each tick, outside the engine lock.
type Hooks struct {
	OnMatchStart     func(matchID string, playerTag uint8)
	OnPhaseChange    func(change PhaseChange)
	OnDamage         func(d DamageConfirmed)
	OnHostileSpawned func(h EntitySnapshot)
	OnGameOver       func(rec PlayerRecord)
	OnTick           func(res TickResult)
}

// Engine runs the fixed-step match loop. All state mutation happens under mu,
// one tick at a time.
type Engine struct {
	mu         sync.RWMutex
	cfg        EngineConfig
	state      *State
	schedule   *Schedule
	detector   *ContactDetector
	dispatcher *Dispatcher
	spawner    *Spawner
	pending    CommandQueue

	input    Input
	mode     ControlMode
	matchID  string
	gameOver bool

	tickRate int
	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}

	hooks     Hooks
	snapshots SnapshotStore
	eventLog  *EventLog
}

// NewEngine creates an engine with no match in progress.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	if cfg.GridCellSize <= 0 {
		cfg.GridCellSize = 100
	}
	cfg.Viewport = cfg.Viewport.Clamped(DefaultEngineConfig().Viewport)

	e := &Engine{
		cfg:        cfg,
		state:      NewState(cfg.Viewport),
		schedule:   DefaultSchedule(),
		detector:   NewContactDetector(cfg.GridCellSize, cfg.Limits.Total()),
		dispatcher: NewDispatcher(cfg.Rules, cfg.Limits),
		spawner:    NewSpawner(cfg.SpawnEvery, cfg.Rules.HostileSpeed, cfg.Seed),
		tickRate:   cfg.TickRate,
		eventLog:   NewEventLog(),
	}
	e.snapshots.Publish(BuildSnapshot(e.state, "", false))
	return e
}

// SetHooks replaces the tick callbacks.
func (e *Engine) SetHooks(h Hooks) {
	e.mu.Lock()
	e.hooks = h
	e.mu.Unlock()
}

// Start begins the game loop. It may be called again after Stop.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	dt := time.Second / time.Duration(e.tickRate)
	// A fresh channel per run so the engine can be restarted after Stop.
	e.stopChan = make(chan struct{})
	e.ticker = time.NewTicker(dt)
	ticker, stop := e.ticker, e.stopChan
	e.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				e.Step(dt)
			case <-stop:
				return
			}
		}
	}()

	log.Printf("🎮 Game engine started at %d TPS", e.tickRate)
}

// Stop stops the game loop and flushes the event log.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		e.eventLog.Stop()
		return
	}
	e.running = false
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.stopChan)
	e.mu.Unlock()

	e.eventLog.Stop()
	log.Println("🛑 Game engine stopped")
}

// StartMatch resets the state, spawns the actor below the viewport flying
// upward, and initialises the player's record. It returns the new match ID.
func (e *Engine) StartMatch() string {
	e.mu.Lock()

	vp := e.state.Viewport
	e.state = NewState(vp)
	e.pending.Drain()
	e.gameOver = false
	e.matchID = uuid.NewString()
	e.eventLog.SetMatchID(e.matchID)

	size := vp.ActorSize()
	spawn := Vec2{X: 0, Y: BottomOut(vp, size)}
	e.state.Actor = e.state.Registry.Spawn(Entity{
		Role:     RoleActor,
		Position: spawn,
		Velocity: Vec2{Y: e.cfg.Rules.EntrySpeed},
		Size:     size,
		Owner:    e.cfg.PlayerTag,
	})
	e.state.Records.Init(e.cfg.PlayerTag, e.cfg.Rules.StartingHealth)

	e.eventLog.EmitSimple(EventTypeMatchStart, 0, PlayerID(e.cfg.PlayerTag), MatchStartPayload{
		PlayerTag: e.cfg.PlayerTag,
		SpawnX:    spawn.X,
		SpawnY:    spawn.Y,
		Health:    e.cfg.Rules.StartingHealth,
	})
	e.snapshots.Publish(BuildSnapshot(e.state, e.matchID, false))

	matchID, tag, hook := e.matchID, e.cfg.PlayerTag, e.hooks.OnMatchStart
	e.mu.Unlock()

	log.Printf("🚀 Match %s started for player %d", matchID, tag)
	if hook != nil {
		hook(matchID, tag)
	}
	return matchID
}

// Step runs one fixed-step tick: detect contacts, run the current phase's
// routines, apply their commands, then integrate and publish a snapshot.
func (e *Engine) Step(dt time.Duration) TickResult {
	e.mu.Lock()
	start := time.Now()
	res := e.step(dt)
	res.Duration = time.Since(start)
	hooks := e.hooks
	e.mu.Unlock()

	e.runHooks(hooks, res)
	return res
}

func (e *Engine) step(dt time.Duration) TickResult {
	s := e.state
	s.Tick++
	res := TickResult{Tick: s.Tick}

	contacts := e.detector.Detect(s.Registry, s.Viewport)
	res.Contacts = len(contacts)

	queue := &CommandQueue{}
	queue.Push(e.pending.Drain()...)

	from := s.Phase
	if e.matchID != "" && !e.gameOver {
		ctx := &TickContext{
			State:    s,
			Input:    e.input,
			Mode:     e.mode,
			DT:       dt,
			Contacts: contacts,
			Commands: queue,
			Rules:    e.cfg.Rules,
		}
		res.Errors = e.schedule.RunPhase(ctx)
		for _, err := range res.Errors {
			log.Printf("⚠️ Tick %d: %v", s.Tick, err)
		}
	}
	if s.Phase != from {
		res.PhaseChange = &PhaseChange{From: from, To: s.Phase}
	}

	res.Commands = queue.Drain()
	res.Outcome = e.dispatcher.Apply(s, res.Commands)
	for _, h := range res.Outcome.Projectiles {
		if p, ok := s.Registry.Get(h); ok {
			res.Fired = append(res.Fired, snapshotEntity(p))
		}
	}

	if e.matchID != "" {
		for _, h := range e.spawner.Update(s, dt, e.cfg.Limits.MaxHostiles) {
			res.Spawned = append(res.Spawned, snapshotEntity(h))
		}
	}

	res.Culled = Integrate(s, dt)
	if len(res.Outcome.GameOver) > 0 {
		e.gameOver = true
	}
	res.Phase = s.Phase

	e.emitTickEvents(dt, res)
	e.snapshots.Publish(BuildSnapshot(s, e.matchID, e.gameOver))
	return res
}

func (e *Engine) emitTickEvents(dt time.Duration, res TickResult) {
	tick := res.Tick
	e.eventLog.EmitSimple(EventTypeTick, tick, "", TickPayload{
		DeltaTimeNs: int64(dt),
		Entities:    e.state.Registry.Len(),
		Contacts:    res.Contacts,
		Commands:    len(res.Commands),
	})

	if res.PhaseChange != nil {
		e.eventLog.EmitSimple(EventTypePhaseChange, tick, "", PhaseChangePayload{
			From: res.PhaseChange.From.String(),
			To:   res.PhaseChange.To.String(),
		})
	}
	for _, p := range res.Fired {
		e.eventLog.EmitSimple(EventTypeFire, tick, PlayerID(p.Owner), FirePayload{Owner: p.Owner, X: p.X, Y: p.Y})
	}
	for _, d := range res.Outcome.Damaged {
		e.eventLog.EmitSimple(EventTypeDamage, tick, PlayerID(d.Owner), DamagePayload{
			Owner: d.Owner, EnemyTag: d.EnemyTag, Health: d.Health,
		})
	}
	for _, h := range res.Spawned {
		e.eventLog.EmitSimple(EventTypeHostileSpawned, tick, "", HostilePayload{Tag: h.Tag, X: h.X, Y: h.Y, VX: h.VX, VY: h.VY})
	}
	for _, tag := range res.Outcome.Destroyed {
		e.eventLog.EmitSimple(EventTypeHostileDestroyed, tick, "", HostilePayload{Tag: tag})
	}
	for _, owner := range res.Outcome.GameOver {
		score := 0
		if rec, ok := e.state.Records.Get(owner); ok {
			score = rec.Score
		}
		e.eventLog.EmitSimple(EventTypeGameOver, tick, PlayerID(owner), GameOverPayload{Owner: owner, Score: score})
	}
}

func (e *Engine) runHooks(h Hooks, res TickResult) {
	if res.PhaseChange != nil {
		log.Printf("🛸 Phase %s → %s at tick %d", res.PhaseChange.From, res.PhaseChange.To, res.Tick)
		if h.OnPhaseChange != nil {
			h.OnPhaseChange(*res.PhaseChange)
		}
	}
	if h.OnHostileSpawned != nil {
		for _, s := range res.Spawned {
			h.OnHostileSpawned(s)
		}
	}
	if h.OnDamage != nil {
		for _, d := range res.Outcome.Damaged {
			h.OnDamage(d)
		}
	}
	for _, owner := range res.Outcome.GameOver {
		rec := e.Record(owner)
		log.Printf("💀 Player %d is out of health (score %d)", owner, rec.Score)
		if h.OnGameOver != nil {
			h.OnGameOver(rec)
		}
	}
	if h.OnTick != nil {
		h.OnTick(res)
	}
}

// SetInput latches the control state used by subsequent ticks.
func (e *Engine) SetInput(in Input) {
	e.mu.Lock()
	e.input = in
	e.mu.Unlock()
}

// SetControlMode switches between keyboard and hover control.
func (e *Engine) SetControlMode(m ControlMode) {
	e.mu.Lock()
	e.mode = m
	e.mu.Unlock()
}

// SetViewport applies a resize. Oversized dimensions are clamped to MaxViewportSide
// and the actor's size follows the viewport tier.
func (e *Engine) SetViewport(vp Viewport) {
	e.mu.Lock()
	defer e.mu.Unlock()

	vp = vp.Clamped(e.state.Viewport)
	if vp.FullWidth <= 0 {
		vp.FullWidth = e.cfg.Viewport.FullWidth
	}
	e.state.Viewport = vp
	if actor, err := e.state.ActorEntity(); err == nil {
		actor.Size = vp.ActorSize()
	}
}

// SpawnHostile adds a hostile. A zero tag is replaced with a fresh one.
func (e *Engine) SpawnHostile(tag uint16, pos, vel Vec2) (EntitySnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.matchID == "" {
		return EntitySnapshot{}, fmt.Errorf("spawn hostile: %w", ErrNoMatch)
	}
	reg := e.state.Registry
	if limit := e.cfg.Limits.MaxHostiles; limit > 0 && reg.Count(RoleHostile) >= limit {
		return EntitySnapshot{}, fmt.Errorf("spawn hostile: %w", ErrLimitReached)
	}
	if tag == 0 {
		tag = e.spawner.NextTag(reg)
	} else if _, ok := reg.HostileByTag(tag); ok {
		return EntitySnapshot{}, fmt.Errorf("spawn hostile %d: %w", tag, ErrDuplicateTag)
	}

	h := reg.Spawn(Entity{
		Role:     RoleHostile,
		Position: pos,
		Velocity: vel,
		Size:     HostileSize,
		Tag:      tag,
	})
	ent, _ := reg.Get(h)
	snap := snapshotEntity(ent)
	e.eventLog.EmitSimple(EventTypeHostileSpawned, e.state.Tick, "", HostilePayload{
		Tag: tag, X: pos.X, Y: pos.Y, VX: vel.X, VY: vel.Y,
	})
	return snap, nil
}

// DefeatHostile marks a hostile defeated elsewhere (for example by a peer) and
// queues its removal for the next tick. Unknown tags are ignored.
func (e *Engine) DefeatHostile(tag uint16) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	hostile, ok := e.state.Registry.HostileByTag(tag)
	if !ok || hostile.Defeated {
		return false
	}
	hostile.Defeated = true
	e.pending.Push(RemoveEntity(hostile.Handle))
	return true
}

// SyncPeer moves the ghost of a remote player, creating it on first sight.
func (e *Engine) SyncPeer(owner uint8, pos Vec2) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if owner == e.cfg.PlayerTag {
		return nil
	}
	reg := e.state.Registry
	if peer, ok := reg.PeerByOwner(owner); ok {
		peer.Position = pos
		return nil
	}
	if limit := e.cfg.Limits.MaxPeers; limit > 0 && reg.Count(RolePeer) >= limit {
		return fmt.Errorf("sync peer %d: %w", owner, ErrLimitReached)
	}
	reg.Spawn(Entity{
		Role:     RolePeer,
		Position: pos,
		Size:     e.state.Viewport.ActorSize(),
		Owner:    owner,
	})
	return nil
}

// Snapshot returns the latest published snapshot.
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshots.Latest()
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Phase
}

// Record returns a copy of the record for owner.
func (e *Engine) Record(owner uint8) PlayerRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if rec, ok := e.state.Records.Get(owner); ok {
		return *rec
	}
	return PlayerRecord{Tag: owner}
}

// MatchID returns the current match ID, or "" before the first match.
func (e *Engine) MatchID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.matchID
}

// PlayerTag returns the owner tag of the local actor.
func (e *Engine) PlayerTag() uint8 {
	return e.cfg.PlayerTag
}

// IsGameOver reports whether the local player has run out of health.
func (e *Engine) IsGameOver() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gameOver
}

// GetEventLog returns the event log.
func (e *Engine) GetEventLog() *EventLog {
	return e.eventLog
}

// GetStats returns engine counters for the API.
func (e *Engine) GetStats() map[string]interface{} {
	e.mu.RLock()
	defer e.mu.RUnlock()

	counts := make(map[string]int, len(Roles))
	for _, role := range Roles {
		counts[role.String()] = e.state.Registry.Count(role)
	}

	stats := map[string]interface{}{
		"tick":     e.state.Tick,
		"tickRate": e.tickRate,
		"running":  e.running,
		"phase":    e.state.Phase.String(),
		"matchId":  e.matchID,
		"gameOver": e.gameOver,
		"entities": counts,
		"eventLog": e.eventLog.GetStats(),
	}
	if grid := e.detector.Grid(); grid != nil {
		stats["grid"] = grid.Stats()
	}
	return stats
}
