package codec

import (
	"encoding/json"
	"fmt"
)

// DecodeRaw unmarshals a json.RawMessage payload (a RoomEventContent
// snapshot or a StateEventContent game_state) into the caller-provided
// destination. Kept generic, rather than
// typed on *arena.RoomSnapshot, to avoid an import cycle with the root
// package and to serve every opaque-payload field in the codec.
func DecodeRaw(raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("codec: unmarshal payload: %w", err)
	}
	return nil
}

// EncodeRaw marshals a value to the json.RawMessage form carried inside an
// EventContent's opaque fields.
func EncodeRaw(v any) (json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: marshal payload: %w", err)
	}
	return raw, nil
}
