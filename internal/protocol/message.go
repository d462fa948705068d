// Package protocol defines the messages exchanged with game clients and peers.
//
// Messages use external tagging: a variant without fields is encoded as its
// name ("GameReady"), a variant with fields as a single-key object whose key is
// the name ({"Joined":{"player_tag":1}}). Positions are [x, y] pairs.
package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownMessage is returned when decoding a variant name that is not defined.
	ErrUnknownMessage = errors.New("unknown message")
	// ErrEmptyPayload is returned when a variant that carries fields has none set.
	ErrEmptyPayload = errors.New("message payload missing")
)

// Kind names a message variant.
type Kind string

const (
	// Server → client
	KindJoined         Kind = "Joined"
	KindGameReady      Kind = "GameReady"
	KindGameStart      Kind = "GameStart"
	KindUpdatePosition Kind = "UpdatePosition"
	KindSpawnEnemy     Kind = "SpawnEnemy"
	KindConfirmDamaged Kind = "ConfirmDamaged"

	// Client → server
	KindInput      Kind = "Input"
	KindControl    Kind = "Control"
	KindResize     Kind = "Resize"
	KindStartMatch Kind = "StartMatch"
)

// unitKinds carry no fields.
var unitKinds = map[Kind]bool{
	KindGameReady:  true,
	KindGameStart:  true,
	KindStartMatch: true,
}

// Position is an (x, y) pair in world units.
type Position [2]float32

// Velocity is a per-tick (x, y) displacement.
type Velocity [2]float32

// Joined tells a client which player tag it controls.
type Joined struct {
	PlayerTag uint8 `json:"player_tag" msgpack:"player_tag"`
}

// UpdatePosition carries a player's position and live projectiles.
type UpdatePosition struct {
	PlayerTag uint8      `json:"player_tag" msgpack:"player_tag"`
	Position  Position   `json:"position" msgpack:"position"`
	Bullets   []Position `json:"bullets" msgpack:"bullets"`
}

// SpawnEnemy announces a hostile.
type SpawnEnemy struct {
	Tag      uint16   `json:"tag" msgpack:"tag"`
	Position Position `json:"position" msgpack:"position"`
	Velocity Velocity `json:"velocity" msgpack:"velocity"`
}

// ConfirmDamaged reports that a hostile hit a player.
type ConfirmDamaged struct {
	PlayerTag uint8  `json:"player_tag" msgpack:"player_tag"`
	EnemyTag  uint16 `json:"enemy_tag" msgpack:"enemy_tag"`
}

// Input is the client's control state.
type Input struct {
	Up     bool   `json:"up" msgpack:"up"`
	Down   bool   `json:"down" msgpack:"down"`
	Left   bool   `json:"left" msgpack:"left"`
	Right  bool   `json:"right" msgpack:"right"`
	Fire   bool   `json:"fire" msgpack:"fire"`
	Analog string `json:"analog,omitempty" msgpack:"analog,omitempty"`
}

// Control switches the control mode ("keyboard" or "hover").
type Control struct {
	Mode string `json:"mode" msgpack:"mode"`
}

// Resize reports the client's viewport size.
type Resize struct {
	Width  float32 `json:"width" msgpack:"width"`
	Height float32 `json:"height" msgpack:"height"`
}

// Message is one protocol message. Exactly the field matching Kind is set;
// unit variants set none.
type Message struct {
	Kind           Kind
	Joined         *Joined
	UpdatePosition *UpdatePosition
	SpawnEnemy     *SpawnEnemy
	ConfirmDamaged *ConfirmDamaged
	Input          *Input
	Control        *Control
	Resize         *Resize
}

// NewJoined builds a Joined message.
func NewJoined(playerTag uint8) Message {
	return Message{Kind: KindJoined, Joined: &Joined{PlayerTag: playerTag}}
}

// NewGameReady builds a GameReady message.
func NewGameReady() Message { return Message{Kind: KindGameReady} }

// NewGameStart builds a GameStart message.
func NewGameStart() Message { return Message{Kind: KindGameStart} }

// NewUpdatePosition builds an UpdatePosition message.
func NewUpdatePosition(playerTag uint8, pos Position, bullets []Position) Message {
	if bullets == nil {
		bullets = []Position{}
	}
	return Message{Kind: KindUpdatePosition, UpdatePosition: &UpdatePosition{
		PlayerTag: playerTag,
		Position:  pos,
		Bullets:   bullets,
	}}
}

// NewSpawnEnemy builds a SpawnEnemy message.
func NewSpawnEnemy(tag uint16, pos Position, vel Velocity) Message {
	return Message{Kind: KindSpawnEnemy, SpawnEnemy: &SpawnEnemy{Tag: tag, Position: pos, Velocity: vel}}
}

// NewConfirmDamaged builds a ConfirmDamaged message.
func NewConfirmDamaged(playerTag uint8, enemyTag uint16) Message {
	return Message{Kind: KindConfirmDamaged, ConfirmDamaged: &ConfirmDamaged{PlayerTag: playerTag, EnemyTag: enemyTag}}
}

// payload returns the variant body, or nil for unit variants.
func (m Message) payload() (interface{}, error) {
	var body interface{}
	var missing bool

	switch m.Kind {
	case KindGameReady, KindGameStart, KindStartMatch:
		return nil, nil
	case KindJoined:
		body, missing = m.Joined, m.Joined == nil
	case KindUpdatePosition:
		body, missing = m.UpdatePosition, m.UpdatePosition == nil
	case KindSpawnEnemy:
		body, missing = m.SpawnEnemy, m.SpawnEnemy == nil
	case KindConfirmDamaged:
		body, missing = m.ConfirmDamaged, m.ConfirmDamaged == nil
	case KindInput:
		body, missing = m.Input, m.Input == nil
	case KindControl:
		body, missing = m.Control, m.Control == nil
	case KindResize:
		body, missing = m.Resize, m.Resize == nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, m.Kind)
	}

	if missing {
		return nil, fmt.Errorf("%s: %w", m.Kind, ErrEmptyPayload)
	}
	return body, nil
}

// slot allocates the body for kind and returns a pointer to decode into.
func (m *Message) slot(kind Kind) (interface{}, error) {
	m.Kind = kind
	switch kind {
	case KindJoined:
		m.Joined = &Joined{}
		return m.Joined, nil
	case KindUpdatePosition:
		m.UpdatePosition = &UpdatePosition{}
		return m.UpdatePosition, nil
	case KindSpawnEnemy:
		m.SpawnEnemy = &SpawnEnemy{}
		return m.SpawnEnemy, nil
	case KindConfirmDamaged:
		m.ConfirmDamaged = &ConfirmDamaged{}
		return m.ConfirmDamaged, nil
	case KindInput:
		m.Input = &Input{}
		return m.Input, nil
	case KindControl:
		m.Control = &Control{}
		return m.Control, nil
	case KindResize:
		m.Resize = &Resize{}
		return m.Resize, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, kind)
	}
}

func (m Message) String() string {
	return string(m.Kind)
}
