package api

import (
	"fmt"
	"sync"
	"time"

	"ufo-shooter/internal/game"
)

// mockEngine implements EngineInterface and records what the API asked of it.
type mockEngine struct {
	mu       sync.Mutex
	matchID  string
	matches  int
	input    game.Input
	mode     game.ControlMode
	viewport game.Viewport
	hostiles map[uint16]game.EntitySnapshot
	peers    map[uint8]game.Vec2
	defeated []uint16
	spawnErr error
}

func newMockEngine() *mockEngine {
	return &mockEngine{
		viewport: game.Viewport{Width: 1200, Height: 800},
		hostiles: make(map[uint16]game.EntitySnapshot),
		peers:    make(map[uint8]game.Vec2),
	}
}

func (m *mockEngine) Snapshot() *game.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := &game.Snapshot{
		Sequence:  uint64(m.matches),
		Timestamp: time.Unix(0, 0),
		MatchID:   m.matchID,
		Phase:     game.PhaseEntry.String(),
		Viewport:  m.viewport,
	}
	if m.matchID != "" {
		snap.Actor = &game.EntitySnapshot{Role: "actor", X: 0, Y: -100, Width: 100, Height: 100, Owner: 1}
		snap.Projectiles = []game.EntitySnapshot{{Role: "projectile", X: 0, Y: -40, Width: 10, Height: 20, Owner: 1}}
	}
	for _, h := range m.hostiles {
		snap.Hostiles = append(snap.Hostiles, h)
	}
	return snap
}

func (m *mockEngine) GetStats() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]interface{}{"matchId": m.matchID, "hostiles": len(m.hostiles)}
}

func (m *mockEngine) StartMatch() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches++
	m.matchID = fmt.Sprintf("match-%d", m.matches)
	return m.matchID
}

func (m *mockEngine) MatchID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchID
}

func (m *mockEngine) PlayerTag() uint8 { return 1 }

func (m *mockEngine) Record(owner uint8) game.PlayerRecord {
	return game.PlayerRecord{Tag: owner, Health: 3}
}

func (m *mockEngine) SetInput(in game.Input) {
	m.mu.Lock()
	m.input = in
	m.mu.Unlock()
}

func (m *mockEngine) SetControlMode(mode game.ControlMode) {
	m.mu.Lock()
	m.mode = mode
	m.mu.Unlock()
}

func (m *mockEngine) SetViewport(vp game.Viewport) {
	m.mu.Lock()
	m.viewport = vp
	m.mu.Unlock()
}

func (m *mockEngine) SpawnHostile(tag uint16, pos, vel game.Vec2) (game.EntitySnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.spawnErr != nil {
		return game.EntitySnapshot{}, m.spawnErr
	}
	if _, ok := m.hostiles[tag]; ok {
		return game.EntitySnapshot{}, fmt.Errorf("spawn hostile %d: %w", tag, game.ErrDuplicateTag)
	}
	snap := game.EntitySnapshot{Role: "hostile", Tag: tag, X: pos.X, Y: pos.Y, VX: vel.X, VY: vel.Y, Width: 60, Height: 60}
	m.hostiles[tag] = snap
	return snap, nil
}

func (m *mockEngine) DefeatHostile(tag uint16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.hostiles[tag]; !ok {
		return false
	}
	delete(m.hostiles, tag)
	m.defeated = append(m.defeated, tag)
	return true
}

func (m *mockEngine) SyncPeer(owner uint8, pos game.Vec2) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.peers[owner] = pos
	return nil
}

func (m *mockEngine) snapshotInput() (game.Input, game.ControlMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.input, m.mode
}
