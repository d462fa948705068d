package game

import (
	"encoding/json"
	"strconv"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeTick              // Tick boundary
	EventTypeMatchStart
	EventTypePhaseChange
	EventTypeFire
	EventTypeDamage
	EventTypeHostileSpawned
	EventTypeHostileDestroyed
	EventTypeGameOver
)

// EventVersion for backwards compatibility in replay
const EventVersion uint8 = 1

// Event is the core event structure for the event log
type Event struct {
	Version   uint8     `json:"version"`   // Schema version
	Type      EventType `json:"type"`      // Event type
	Timestamp int64     `json:"timestamp"` // Unix nano
	Sequence  uint64    `json:"sequence"`  // Monotonic sequence
	TickNum   uint64    `json:"tickNum"`   // Game tick this occurred in
	MatchID   string    `json:"matchId"`   // Match the event belongs to
	PlayerID  string    `json:"playerId"`  // Source player (for rate limiting)
	Payload   []byte    `json:"payload"`   // JSON-encoded payload
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeTick:
		return "tick"
	case EventTypeMatchStart:
		return "match_start"
	case EventTypePhaseChange:
		return "phase_change"
	case EventTypeFire:
		return "fire"
	case EventTypeDamage:
		return "damage"
	case EventTypeHostileSpawned:
		return "hostile_spawned"
	case EventTypeHostileDestroyed:
		return "hostile_destroyed"
	case EventTypeGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// PlayerID formats an owner tag for per-player rate limiting.
func PlayerID(owner uint8) string {
	return "player-" + strconv.Itoa(int(owner))
}

// Typed payloads for different event types

// TickPayload contains tick boundary information
type TickPayload struct {
	DeltaTimeNs int64 `json:"deltaTimeNs"`
	Entities    int   `json:"entities"`
	Contacts    int   `json:"contacts"`
	Commands    int   `json:"commands"`
}

// MatchStartPayload describes the actor spawn for a new match
type MatchStartPayload struct {
	PlayerTag uint8   `json:"playerTag"`
	SpawnX    float64 `json:"spawnX"`
	SpawnY    float64 `json:"spawnY"`
	Health    int     `json:"health"`
}

// PhaseChangePayload records a phase transition
type PhaseChangePayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// FirePayload records a projectile spawn
type FirePayload struct {
	Owner uint8   `json:"owner"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// DamagePayload contains damage event details
type DamagePayload struct {
	Owner    uint8  `json:"owner"`
	EnemyTag uint16 `json:"enemyTag"`
	Health   int    `json:"health"`
}

// HostilePayload describes a hostile spawn or removal
type HostilePayload struct {
	Tag uint16  `json:"tag"`
	X   float64 `json:"x,omitempty"`
	Y   float64 `json:"y,omitempty"`
	VX  float64 `json:"vx,omitempty"`
	VY  float64 `json:"vy,omitempty"`
}

// GameOverPayload records the final score of a player
type GameOverPayload struct {
	Owner uint8 `json:"owner"`
	Score int   `json:"score"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, tickNum uint64, playerID string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		PlayerID:  playerID,
		Payload:   EncodePayload(payload),
	}
}
