package arena

// Event is the marker interface for every value the Arena Protocol delivers
// through TryRecv/Recv. The concrete types below form the typed stream named
// in §2's "Event Fan-out" component.
type Event interface {
	eventMarker()
}

type baseEvent struct{}

func (baseEvent) eventMarker() {}

// EventPlayerJoin is emitted each time a peer's Join ephemeral is ingested,
// including the re-published copies of the same player's Join.
type EventPlayerJoin struct {
	baseEvent
	PubKey string
}

// EventPlayerLeave is emitted by host reconciliation when a player's
// last_seen ages past the disconnect threshold (§4.6).
type EventPlayerLeave struct {
	baseEvent
	PubKey string
}

// EventPlayerDisconnect is reserved for a future, more immediate disconnect
// signal distinct from the timeout-based EventPlayerLeave. The original
// implementation defines the equivalent variant but never emits it; this
// port keeps the type for API parity without wiring an emitter, per §9's
// "timeout-based path remains authoritative" note.
type EventPlayerDisconnect struct {
	baseEvent
	PubKey string
}

// EventPlayerState carries a decoded per-player game state update. T is the
// application-supplied, opaque state type (§9).
type EventPlayerState[T any] struct {
	baseEvent
	PubKey string
	State  T
}

// EventPlayerGameOver is emitted on an inbound GameOver ephemeral.
type EventPlayerGameOver struct {
	baseEvent
	PubKey     string
	Reason     string
	FinalScore *int64
	Winner     *string
}

// EventRematchRequested is emitted when a peer requests a rematch.
type EventRematchRequested struct {
	baseEvent
	PubKey string
}

// EventRematchStart is emitted once a rematch is accepted and the room has
// been reset with the new seed.
type EventRematchStart struct {
	baseEvent
	NewSeed uint64
}

// EventAllReady is emitted once every player's ready flag is true, in Ready
// and Countdown modes.
type EventAllReady struct {
	baseEvent
}

// EventCountdownStart is emitted once, at the start of a Countdown-mode
// countdown, carrying the configured number of seconds.
type EventCountdownStart struct {
	baseEvent
	Seconds uint32
}

// EventCountdownTick is emitted once per second during a Countdown-mode
// countdown, counting down to zero inclusive.
type EventCountdownTick struct {
	baseEvent
	Remaining uint32
}

// EventGameStart is emitted exactly once per successful start-mode
// transition to Playing.
type EventGameStart struct {
	baseEvent
}

// EventError surfaces an asynchronous error the application must learn
// about, reserved per §7 for conditions beyond routine relay hiccups.
type EventError struct {
	baseEvent
	Message string
}
