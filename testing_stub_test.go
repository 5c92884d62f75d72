package arena

import (
	"context"
	"strings"
	"sync"

	"github.com/nbd-wtf/go-nostr"

	"github.com/kako-jun/nostr-arena-go/internal/wireclient"
)

// stubHub is an in-memory relay standing in for the Nostr network in tests:
// one authoritative snapshot per d-tag, and a fan-out of ephemeral events to
// every live subscriber of that d-tag. Mirrors the teacher's MockBusService
// pattern (a shared, goroutine-safe stand-in for the real transport).
type stubHub struct {
	mu        sync.Mutex
	snapshots map[string]string
	subs      map[string][]chan wireclient.RelayEvent
}

func newStubHub() *stubHub {
	return &stubHub{
		snapshots: make(map[string]string),
		subs:      make(map[string][]chan wireclient.RelayEvent),
	}
}

func (h *stubHub) publishRoom(dTag, content string) {
	h.mu.Lock()
	h.snapshots[dTag] = content
	h.mu.Unlock()
}

func (h *stubHub) fetchRoom(dTag string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	content, ok := h.snapshots[dTag]
	return content, ok
}

// fetchRoomsByTag returns every published snapshot whose d-tag carries the
// given prefix, wrapped as *nostr.Event so callers can reuse extractRoomID.
func (h *stubHub) fetchRoomsByTag(prefix string) []*nostr.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []*nostr.Event
	for dTag, content := range h.snapshots {
		if !strings.HasPrefix(dTag, prefix) {
			continue
		}
		out = append(out, &nostr.Event{
			Content: content,
			Tags:    nostr.Tags{{"d", dTag}},
		})
	}
	return out
}

func (h *stubHub) publishEphemeral(pubkey, dTag, content string) {
	h.mu.Lock()
	subs := append([]chan wireclient.RelayEvent{}, h.subs[dTag]...)
	h.mu.Unlock()

	evt := &nostr.Event{
		PubKey:  pubkey,
		Kind:    wireclient.KindEphemeral,
		Content: content,
	}
	for _, ch := range subs {
		ch <- wireclient.RelayEvent{Event: evt, Relay: "stub"}
	}
}

func (h *stubHub) subscribe(dTag string) (chan wireclient.RelayEvent, func()) {
	ch := make(chan wireclient.RelayEvent, 64)
	h.mu.Lock()
	h.subs[dTag] = append(h.subs[dTag], ch)
	h.mu.Unlock()

	closeFn := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.subs[dTag]
		for i, c := range subs {
			if c == ch {
				h.subs[dTag] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
	return ch, closeFn
}

// stubWireClient implements wireClient against a shared stubHub, standing in
// for the relay network in protocol-level tests (§8's "stubbed wire client"
// scenarios).
type stubWireClient struct {
	hub       *stubHub
	pubkey    string
	mu        sync.Mutex
	connected bool
}

func newStubWireClient(hub *stubHub, pubkey string) *stubWireClient {
	return &stubWireClient{hub: hub, pubkey: pubkey}
}

func (c *stubWireClient) PubKey() string { return c.pubkey }

func (c *stubWireClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()
	return nil
}

func (c *stubWireClient) Disconnect() {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
}

func (c *stubWireClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *stubWireClient) RelayStatuses() []wireclient.RelayStatus { return nil }

func (c *stubWireClient) PublishRoom(ctx context.Context, dTag, gameID, content string) error {
	c.hub.publishRoom(dTag, content)
	return nil
}

func (c *stubWireClient) PublishEphemeral(ctx context.Context, dTag, content string) error {
	c.hub.publishEphemeral(c.pubkey, dTag, content)
	return nil
}

func (c *stubWireClient) FetchRoom(ctx context.Context, dTag string) (*nostr.Event, error) {
	content, ok := c.hub.fetchRoom(dTag)
	if !ok {
		return nil, nil
	}
	return &nostr.Event{Content: content}, nil
}

func (c *stubWireClient) FetchRooms(ctx context.Context, gameID string) ([]*nostr.Event, error) {
	return c.hub.fetchRoomsByTag(gameID + "-"), nil
}

func (c *stubWireClient) SubscribeRoom(ctx context.Context, dTag string) (*wireclient.Subscription, error) {
	ch, closeFn := c.hub.subscribe(dTag)
	return &wireclient.Subscription{ID: "stub", Events: ch, Close: closeFn}, nil
}

// newTestArena builds an Arena wired to hub under pubkey, bypassing key
// generation so tests can assign stable, readable identities.
func newTestArena[T any](hub *stubHub, pubkey string, config Config) *Arena[T] {
	identity := wireclient.Identity{SecretKey: "stub-sk-" + pubkey, PubKey: pubkey}
	return newArenaWithWire[T](config, identity, newStubWireClient(hub, pubkey))
}
