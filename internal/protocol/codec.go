package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// MarshalJSON encodes the message with external tagging.
func (m Message) MarshalJSON() ([]byte, error) {
	body, err := m.payload()
	if err != nil {
		return nil, err
	}
	if body == nil {
		return json.Marshal(string(m.Kind))
	}
	return json.Marshal(map[string]interface{}{string(m.Kind): body})
}

// UnmarshalJSON decodes an externally tagged message.
func (m *Message) UnmarshalJSON(data []byte) error {
	*m = Message{}

	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		return m.setUnit(Kind(name))
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	if len(obj) != 1 {
		return fmt.Errorf("decode message: expected one variant, got %d", len(obj))
	}

	for name, raw := range obj {
		kind := Kind(name)
		if unitKinds[kind] {
			m.Kind = kind
			return nil
		}
		dst, err := m.slot(kind)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("decode %s: %w", kind, err)
		}
	}
	return nil
}

func (m *Message) setUnit(kind Kind) error {
	if unitKinds[kind] {
		m.Kind = kind
		return nil
	}
	if _, err := (&Message{}).slot(kind); err != nil {
		return err
	}
	return fmt.Errorf("%s: %w", kind, ErrEmptyPayload)
}

// Encode returns the JSON text form of m.
func Encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses the JSON text form of a message.
func Decode(data []byte) (Message, error) {
	var m Message
	err := json.Unmarshal(data, &m)
	return m, err
}

// EncodeBinary returns the msgpack form of m, tagged the same way as the JSON form.
func EncodeBinary(m Message) ([]byte, error) {
	body, err := m.payload()
	if err != nil {
		return nil, err
	}
	if body == nil {
		return msgpack.Marshal(string(m.Kind))
	}
	return msgpack.Marshal(map[string]interface{}{string(m.Kind): body})
}

// DecodeBinary parses the msgpack form of a message.
func DecodeBinary(data []byte) (Message, error) {
	var m Message

	var name string
	if err := msgpack.Unmarshal(data, &name); err == nil {
		return m, m.setUnit(Kind(name))
	}

	var obj map[string]msgpack.RawMessage
	if err := msgpack.Unmarshal(data, &obj); err != nil {
		return m, fmt.Errorf("decode binary message: %w", err)
	}
	if len(obj) != 1 {
		return m, fmt.Errorf("decode binary message: expected one variant, got %d", len(obj))
	}

	for name, raw := range obj {
		kind := Kind(name)
		if unitKinds[kind] {
			m.Kind = kind
			return m, nil
		}
		dst, err := m.slot(kind)
		if err != nil {
			return m, err
		}
		if err := msgpack.Unmarshal(raw, dst); err != nil {
			return m, fmt.Errorf("decode binary %s: %w", kind, err)
		}
	}
	return m, nil
}
