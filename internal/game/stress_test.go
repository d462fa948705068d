package game

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// -----------------------------------------------------------------------------
// STRESS TEST: CONCURRENT CONTROL
// -----------------------------------------------------------------------------

// TestStress_ConcurrentCommands drives the engine from several goroutines while
// the tick loop runs. Run with -race.
func TestStress_ConcurrentCommands(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping stress test in short mode")
	}

	cfg := DefaultEngineConfig()
	cfg.TickRate = 120
	cfg.SpawnEvery = 50 * time.Millisecond
	e := NewEngine(cfg)
	e.StartMatch()
	e.Start()
	defer e.Stop()

	var wg sync.WaitGroup
	var commandsProcessed int64

	numWorkers := 8
	commandsPerWorker := 100

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(workerID)))
			for i := 0; i < commandsPerWorker; i++ {
				switch rng.Intn(6) {
				case 0:
					e.SetInput(Input{Up: rng.Intn(2) == 0, Left: rng.Intn(2) == 0, Fire: true})
				case 1:
					e.SpawnHostile(0, Vec2{X: rng.Float64()*800 - 400, Y: 300}, Vec2{Y: -2})
				case 2:
					e.DefeatHostile(uint16(rng.Intn(50) + 1))
				case 3:
					e.SyncPeer(uint8(workerID+2), Vec2{X: float64(i), Y: 0})
				case 4:
					if snap := e.Snapshot(); snap != nil {
						_ = snap.EntityCount()
					}
				case 5:
					e.SetViewport(Viewport{Width: 900 + float64(rng.Intn(600)), Height: 800})
				}
				atomic.AddInt64(&commandsProcessed, 1)
				time.Sleep(time.Millisecond)
			}
		}(w)
	}

	wg.Wait()

	snap := e.Snapshot()
	t.Logf("Concurrent Commands Test:")
	t.Logf("  Commands Processed: %d", commandsProcessed)
	t.Logf("  Final tick: %d, entities: %d", snap.Tick, snap.EntityCount())

	assert.Equal(t, int64(numWorkers*commandsPerWorker), commandsProcessed)
	assert.LessOrEqual(t, len(snap.Hostiles), cfg.Limits.MaxHostiles)
	assert.LessOrEqual(t, len(snap.Projectiles), cfg.Limits.MaxProjectiles)
	assert.LessOrEqual(t, len(snap.Peers), cfg.Limits.MaxPeers)
}

// -----------------------------------------------------------------------------
// STRESS TEST: SUSTAINED SPAWNING
// -----------------------------------------------------------------------------

func TestStress_SustainedSpawning(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.SpawnEvery = time.Second / 60
	cfg.Rules.InvulnerableFor = time.Hour
	e := NewEngine(cfg)
	e.StartMatch()
	e.SetInput(Input{Fire: true})

	for i := 0; i < 3000; i++ {
		res := e.Step(time.Second / 60)
		if len(res.Errors) > 0 {
			t.Fatalf("tick %d: %v", res.Tick, res.Errors)
		}
	}

	snap := e.Snapshot()
	assert.LessOrEqual(t, len(snap.Hostiles), cfg.Limits.MaxHostiles)
	assert.LessOrEqual(t, len(snap.Effects), cfg.Limits.MaxEffects)
	assert.LessOrEqual(t, snap.EntityCount(), cfg.Limits.Total())
}
