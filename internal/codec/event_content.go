// Package codec encodes and decodes the JSON payloads carried in Nostr event
// Content fields: the tagged-union EventContent of spec §4.3/§6, and the
// RoomSnapshot published in ROOM-kind events. It mirrors the original crate's
// types.rs EventContent enum (serde's internally-tagged "type" convention,
// #[serde(tag = "type", rename_all = "lowercase")]), translated to Go's
// encoding/json: every variant is a flat JSON object carrying its own fields
// alongside "type", not a nested {"type":...,"data":{...}} envelope.
package codec

import (
	"encoding/json"
	"fmt"
)

// Kind identifies which EventContent variant a decoded payload carries.
type Kind string

const (
	KindRoom      Kind = "room"
	KindJoin      Kind = "join"
	KindState     Kind = "state"
	KindGameOver  Kind = "gameover"
	KindRematch   Kind = "rematch"
	KindHeartbeat Kind = "heartbeat"
	KindReady     Kind = "ready"
	KindGameStart Kind = "gamestart"
)

// RematchAction mirrors the original RematchAction enum.
type RematchAction string

const (
	RematchRequest RematchAction = "request"
	RematchAccept  RematchAction = "accept"
	RematchDecline RematchAction = "decline"
)

// RoomEventContent carries a full room snapshot. Rare on the ephemeral
// stream (§4.5: "Room: ignore"); Snapshot retains the raw flat payload for
// any caller that still wants to inspect it.
type RoomEventContent struct {
	Snapshot json.RawMessage
}

// JoinEventContent announces a player joining. player_pubkey is the only
// field the wire format carries for this variant (§6); it happens to
// duplicate the publishing event's own author but is spec-mandated.
type JoinEventContent struct {
	PlayerPubKey string `json:"player_pubkey"`
}

// StateEventContent carries an opaque, per-game player state payload. The
// author is the publishing Nostr event's pubkey, not a content field (§6).
type StateEventContent struct {
	GameState json.RawMessage `json:"game_state"`
}

// GameOverEventContent carries the end-of-game result (§6). The author is
// the publishing event's pubkey, not a content field.
type GameOverEventContent struct {
	Reason     string  `json:"reason"`
	FinalScore *int64  `json:"final_score,omitempty"`
	Winner     *string `json:"winner,omitempty"`
}

// RematchEventContent carries a rematch request or acceptance (§6). The
// author is the publishing event's pubkey, not a content field.
type RematchEventContent struct {
	Action  RematchAction `json:"action"`
	NewSeed *uint64       `json:"new_seed,omitempty"`
}

// HeartbeatEventContent is the ephemeral liveness ping (§4.6). The author is
// the publishing event's pubkey, not a content field.
type HeartbeatEventContent struct {
	Timestamp int64 `json:"timestamp"`
}

// ReadyEventContent announces ready-state toggling (Ready start mode). The
// author is the publishing event's pubkey, not a content field.
type ReadyEventContent struct {
	Ready bool `json:"ready"`
}

// GameStartEventContent announces the authoritative start of play. Spec §6
// defines it as the empty object {}.
type GameStartEventContent struct{}

// EncodeRoom flattens a RoomSnapshot into an internally-tagged payload.
func EncodeRoom(snapshot any) ([]byte, error) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("codec: marshal room snapshot: %w", err)
	}
	return mergeType(KindRoom, raw)
}

func EncodeJoin(v JoinEventContent) ([]byte, error)         { return encode(KindJoin, v) }
func EncodeState(v StateEventContent) ([]byte, error)       { return encode(KindState, v) }
func EncodeGameOver(v GameOverEventContent) ([]byte, error) { return encode(KindGameOver, v) }
func EncodeRematch(v RematchEventContent) ([]byte, error)   { return encode(KindRematch, v) }
func EncodeHeartbeat(v HeartbeatEventContent) ([]byte, error) {
	return encode(KindHeartbeat, v)
}
func EncodeReady(v ReadyEventContent) ([]byte, error)         { return encode(KindReady, v) }
func EncodeGameStart(v GameStartEventContent) ([]byte, error) { return encode(KindGameStart, v) }

func encode(kind Kind, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("codec: marshal %s: %w", kind, err)
	}
	return mergeType(kind, raw)
}

// mergeType flattens kind into raw's own top-level object, producing the
// internally-tagged {"type":"...", ...fields} shape §6 requires in place of
// an adjacently-tagged {"type":"...","data":{...}} wrapper.
func mergeType(kind Kind, raw json.RawMessage) ([]byte, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("codec: flatten %s: %w", kind, err)
	}
	if m == nil {
		m = map[string]json.RawMessage{}
	}
	typeRaw, err := json.Marshal(kind)
	if err != nil {
		return nil, fmt.Errorf("codec: marshal type tag: %w", err)
	}
	m["type"] = typeRaw
	return json.Marshal(m)
}

// Decoded is the result of Decode: for a known Kind exactly one field is
// populated, matching Kind. Unknown kinds decode with Kind set to the
// received "type" string, no field populated, and no error, so unknown
// event variants are ignored rather than treated as errors.
type Decoded struct {
	Kind      Kind
	Room      *RoomEventContent
	Join      *JoinEventContent
	State     *StateEventContent
	GameOver  *GameOverEventContent
	Rematch   *RematchEventContent
	Heartbeat *HeartbeatEventContent
	Ready     *ReadyEventContent
	GameStart *GameStartEventContent
}

// Decode parses a Nostr event Content string into a Decoded payload.
// Malformed JSON at the top level is an error; an unrecognized "type" is
// not, so future variants are forward-compatible.
func Decode(content []byte) (Decoded, error) {
	var probe struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(content, &probe); err != nil {
		return Decoded{}, fmt.Errorf("codec: unmarshal payload: %w", err)
	}

	d := Decoded{Kind: probe.Type}
	switch probe.Type {
	case KindRoom:
		d.Room = &RoomEventContent{Snapshot: json.RawMessage(content)}
	case KindJoin:
		var v JoinEventContent
		if err := json.Unmarshal(content, &v); err != nil {
			return Decoded{}, fmt.Errorf("codec: unmarshal join: %w", err)
		}
		d.Join = &v
	case KindState:
		var v StateEventContent
		if err := json.Unmarshal(content, &v); err != nil {
			return Decoded{}, fmt.Errorf("codec: unmarshal state: %w", err)
		}
		d.State = &v
	case KindGameOver:
		var v GameOverEventContent
		if err := json.Unmarshal(content, &v); err != nil {
			return Decoded{}, fmt.Errorf("codec: unmarshal gameover: %w", err)
		}
		d.GameOver = &v
	case KindRematch:
		var v RematchEventContent
		if err := json.Unmarshal(content, &v); err != nil {
			return Decoded{}, fmt.Errorf("codec: unmarshal rematch: %w", err)
		}
		d.Rematch = &v
	case KindHeartbeat:
		var v HeartbeatEventContent
		if err := json.Unmarshal(content, &v); err != nil {
			return Decoded{}, fmt.Errorf("codec: unmarshal heartbeat: %w", err)
		}
		d.Heartbeat = &v
	case KindReady:
		var v ReadyEventContent
		if err := json.Unmarshal(content, &v); err != nil {
			return Decoded{}, fmt.Errorf("codec: unmarshal ready: %w", err)
		}
		d.Ready = &v
	case KindGameStart:
		var v GameStartEventContent
		if err := json.Unmarshal(content, &v); err != nil {
			return Decoded{}, fmt.Errorf("codec: unmarshal gamestart: %w", err)
		}
		d.GameStart = &v
	default:
		// Unknown variant: return zero Decoded with Kind set, no error.
	}
	return d, nil
}
