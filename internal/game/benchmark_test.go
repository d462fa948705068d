package game

import (
	"math/rand"
	"testing"
	"time"

	"ufo-shooter/internal/game/spatial"
)

// =============================================================================
// BENCHMARK SUITE: TICK PIPELINE
// Run with: go test -bench=. -benchmem ./internal/game/...
// =============================================================================

// -----------------------------------------------------------------------------
// ENGINE TICK BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkEngineTick_10Hostiles(b *testing.B) { benchmarkEngineTick(b, 10) }
func BenchmarkEngineTick_30Hostiles(b *testing.B) { benchmarkEngineTick(b, 30) }
func BenchmarkEngineTick_64Hostiles(b *testing.B) { benchmarkEngineTick(b, 64) }

func benchmarkEngineTick(b *testing.B, hostiles int) {
	cfg := DefaultEngineConfig()
	e := NewEngine(cfg)
	e.StartMatch()
	for i := 0; i < 40; i++ {
		e.Step(time.Second / 60)
	}
	e.SetInput(Input{Fire: true, Left: true})

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < hostiles; i++ {
		// Zero velocity keeps the population stable across iterations.
		pos := Vec2{X: rng.Float64()*1000 - 500, Y: rng.Float64()*600 - 100}
		e.SpawnHostile(0, pos, Vec2{})
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		e.Step(time.Second / 60)
	}
}

// -----------------------------------------------------------------------------
// CONTACT DETECTION BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkDetect_64Hostiles(b *testing.B) {
	vp := Viewport{Width: 1200, Height: 800}
	s := NewState(vp)
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 64; i++ {
		s.Registry.Spawn(Entity{
			Role:     RoleHostile,
			Position: Vec2{X: rng.Float64()*1200 - 600, Y: rng.Float64()*800 - 400},
			Size:     HostileSize,
			Tag:      uint16(i + 1),
		})
	}
	for i := 0; i < 30; i++ {
		s.Registry.Spawn(Entity{
			Role:     RoleProjectile,
			Position: Vec2{X: rng.Float64()*1200 - 600, Y: rng.Float64()*800 - 400},
			Size:     ProjectileSize,
			Owner:    1,
		})
	}
	d := NewContactDetector(100, DefaultLimits.Total())

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		d.Detect(s.Registry, vp)
	}
}

func BenchmarkResolveContacts(b *testing.B) {
	s := NewState(Viewport{Width: 1200, Height: 800})
	var contacts []ContactEvent
	for i := 0; i < 20; i++ {
		shot := s.Registry.Spawn(Entity{Role: RoleProjectile, Size: ProjectileSize, Owner: 1})
		hostile := s.Registry.Spawn(Entity{Role: RoleHostile, Size: HostileSize, Tag: uint16(i + 1)})
		contacts = append(contacts, ContactEvent{A: hostile, B: shot})
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		ResolveContacts(s.Registry, contacts)
	}
}

// -----------------------------------------------------------------------------
// SPATIAL GRID BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkSpatialGrid_Insert(b *testing.B) {
	grid := spatial.NewSpatialGrid(-700, -500, 1400, 1000, 100, 200)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		grid.Clear()
		for j := 0; j < 100; j++ {
			grid.Insert(uint32(j), float64(j*13%1400)-700, float64(j*7%1000)-500)
		}
	}
}

// -----------------------------------------------------------------------------
// SNAPSHOT BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkBuildSnapshot(b *testing.B) {
	e := NewEngine(DefaultEngineConfig())
	matchID := e.StartMatch()
	for i := 0; i < 50; i++ {
		e.SpawnHostile(0, Vec2{X: float64(i*20 - 500), Y: 200}, Vec2{})
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		BuildSnapshot(e.state, matchID, false)
	}
}
