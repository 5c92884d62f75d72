// Package wireclient is the only part of this module that talks to the
// Nostr relay network, via github.com/nbd-wtf/go-nostr's SimplePool. It wraps
// publish/fetch/subscribe with the per-relay circuit breaking and connection
// bookkeeping the rest of the module relies on, grounded on the real go-nostr
// usage in the retrieved klppl-klistr relay/publisher and pinpox-nitrous DM
// client examples.
package wireclient

import "github.com/nbd-wtf/go-nostr"

// Nostr event kinds used by the protocol (§4.1).
const (
	KindRoom      = 30078 // addressable/replaceable: one live event per (author, d-tag)
	KindEphemeral = 25000 // not retained by relays; used for every in-room message (join, state, heartbeat, ready, ...)
)

// RelayEvent is a decoded inbound event together with the relay it arrived
// from, mirroring go-nostr's IncomingEvent.
type RelayEvent struct {
	Event *nostr.Event
	Relay string
}

// Subscription is a live inbound subscription; Close stops delivery and
// releases the underlying goroutine.
type Subscription struct {
	ID     string
	Events <-chan RelayEvent
	Close  func()
}

// RelayStatus reports per-relay health, surfacing the original crate's
// relay_status()/has_connected_relay() semantics.
type RelayStatus struct {
	URL         string
	Connected   bool
	CircuitOpen string // "closed", "open", "half-open"
}
