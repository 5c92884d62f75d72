// Package arena implements serverless, real-time multiplayer game-room
// coordination over a decentralized Nostr relay network: room creation and
// discovery, presence reconciliation via heartbeats, four start-mode
// protocols (Auto, Ready, Countdown, Host), rematch, and a typed event
// stream delivered to the embedding application. No central server
// participates; all durable state lives in relay-held events keyed by a
// deterministic room tag.
package arena

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kako-jun/nostr-arena-go/internal/fanout"
	"github.com/kako-jun/nostr-arena-go/internal/logging"
	"github.com/kako-jun/nostr-arena-go/internal/metrics"
	"github.com/kako-jun/nostr-arena-go/internal/spawn"
	"github.com/kako-jun/nostr-arena-go/internal/wireclient"
)

// Arena is the in-process coordination layer described in §1: it owns the
// room lifecycle, reconciles presence, runs the start-mode sub-protocols,
// and multiplexes inbound relay events into a typed stream. T is the
// application-supplied, opaque per-player game state carrier (§9).
type Arena[T any] struct {
	config   Config
	identity wireclient.Identity
	wire     wireClient

	roomMu          sync.RWMutex
	room            RoomState
	players         map[string]PlayerPresence
	playerStates    map[string]T
	lastStateUpdate int64
	startSequenceOn bool

	queue *fanout.Queue[Event]

	subMu sync.Mutex
	sub   *wireclient.Subscription
	tasks *spawn.Group
}

// New constructs an Arena from config, generating a fresh Identity. Create
// and Join call Connect themselves if needed; ListRooms does not use the
// Arena and opens its own transient client.
func New[T any](config Config) (*Arena[T], error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	identity, err := wireclient.GenerateIdentity()
	if err != nil {
		return nil, errNostr(err)
	}
	return newArena[T](config, identity), nil
}

// NewWithSecretKey constructs an Arena using a caller-supplied secret key,
// so the same identity can be reused across process restarts.
func NewWithSecretKey[T any](config Config, secretKeyHex string) (*Arena[T], error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	identity, err := wireclient.IdentityFromSecretKey(secretKeyHex)
	if err != nil {
		return nil, errNostr(err)
	}
	return newArena[T](config, identity), nil
}

func newArena[T any](config Config, identity wireclient.Identity) *Arena[T] {
	return newArenaWithWire[T](config, identity, wireclient.New(identity, config.Relays))
}

// newArenaWithWire builds an Arena against an arbitrary wireClient
// implementation. Production code always goes through New/NewWithSecretKey;
// tests use it to substitute a stub wire client (§8).
func newArenaWithWire[T any](config Config, identity wireclient.Identity, wire wireClient) *Arena[T] {
	return &Arena[T]{
		config:       config,
		identity:     identity,
		wire:         wire,
		room:         idleRoomState(),
		players:      make(map[string]PlayerPresence),
		playerStates: make(map[string]T),
		queue:        fanout.New[Event](fanout.DefaultCapacity),
	}
}

// PublicKey returns this Arena's hex-encoded public key (§4.1).
func (a *Arena[T]) PublicKey() string { return a.identity.PubKey }

// Connect ensures the underlying wire client is connected to its relays.
// Idempotent; partial relay failures are tolerated.
func (a *Arena[T]) Connect(ctx context.Context) error {
	return a.wire.Connect(ctx)
}

// Disconnect tears down the relay connection and any active subscription.
func (a *Arena[T]) Disconnect() {
	a.stopBackgroundTasks()
	a.wire.Disconnect()
}

// IsConnected reports whether Connect has succeeded and not been undone by
// Disconnect.
func (a *Arena[T]) IsConnected() bool {
	return a.wire.IsConnected()
}

// RelayStatuses surfaces per-relay connectivity and circuit-breaker state.
func (a *Arena[T]) RelayStatuses() []wireclient.RelayStatus {
	return a.wire.RelayStatuses()
}

// RoomState returns a copy of the current room state.
func (a *Arena[T]) RoomState() RoomState {
	a.roomMu.RLock()
	defer a.roomMu.RUnlock()
	return a.room
}

// Players returns a snapshot of the locally-observed presence table.
func (a *Arena[T]) Players() []PlayerPresence {
	a.roomMu.RLock()
	defer a.roomMu.RUnlock()
	out := make([]PlayerPresence, 0, len(a.players))
	for _, p := range a.players {
		out = append(out, p)
	}
	return out
}

// PlayerCount returns the number of locally-observed players.
func (a *Arena[T]) PlayerCount() int {
	a.roomMu.RLock()
	defer a.roomMu.RUnlock()
	return len(a.players)
}

// PlayerState returns the last known opaque state for pubkey, if any.
func (a *Arena[T]) PlayerState(pubkey string) (T, bool) {
	a.roomMu.RLock()
	defer a.roomMu.RUnlock()
	s, ok := a.playerStates[pubkey]
	return s, ok
}

// TryRecv performs a non-blocking poll of the event stream.
func (a *Arena[T]) TryRecv() (Event, bool) {
	return a.queue.TryRecv()
}

// Recv blocks until an event is available or ctx is cancelled.
func (a *Arena[T]) Recv(ctx context.Context) (Event, error) {
	return a.queue.Recv(ctx)
}

// GetRoomURL formats the shareable room URL for the current room, or "" if
// not in a room.
func (a *Arena[T]) GetRoomURL() string {
	a.roomMu.RLock()
	roomID := a.room.RoomID
	a.roomMu.RUnlock()
	if roomID == "" {
		return ""
	}
	return a.config.roomURL(roomID)
}

func (a *Arena[T]) emit(ev Event) {
	roomID := a.RoomState().RoomID
	if !a.queue.TrySend(ev) {
		metrics.EventsDroppedTotal.WithLabelValues(roomID).Inc()
		logging.Warn(context.Background(), "event queue full, dropping event", "room_id", roomID)
	}
	metrics.EventQueueDepth.WithLabelValues(roomID).Set(float64(a.queue.Len()))
}

func (a *Arena[T]) stopBackgroundTasks() {
	a.subMu.Lock()
	defer a.subMu.Unlock()
	if a.sub != nil {
		a.sub.Close()
		a.sub = nil
	}
	if a.tasks != nil {
		a.tasks.Stop()
		a.tasks = nil
	}
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}

func marshalState[T any](state T) (json.RawMessage, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, errSerialization(err)
	}
	return raw, nil
}
