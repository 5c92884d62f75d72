package wireclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nbd-wtf/go-nostr"
	"golang.org/x/time/rate"

	"github.com/kako-jun/nostr-arena-go/internal/logging"
	"github.com/kako-jun/nostr-arena-go/internal/metrics"
)

// publishRateLimit matches the throttle the klppl-klistr Publisher uses to
// stay under relay anti-spam thresholds during bursts (heartbeats, state
// updates).
const (
	publishRateLimit = rate.Limit(10)
	publishRateBurst = 20
)

// Client is a connection to a set of Nostr relays, scoped to one Identity.
// It is the sole owner of the underlying nostr.SimplePool.
type Client struct {
	identity Identity
	relays   []string

	mu           sync.RWMutex
	pool         *nostr.SimplePool
	connected    bool
	relayHealthy map[string]bool

	circuits *circuitRegistry
	limiter  *rate.Limiter
}

// New creates a Client bound to identity, publishing/subscribing across relays.
func New(identity Identity, relays []string) *Client {
	return &Client{
		identity: identity,
		relays:   append([]string{}, relays...),
		circuits: newCircuitRegistry(),
		limiter:  rate.NewLimiter(publishRateLimit, publishRateBurst),
	}
}

// PubKey returns the client's public key.
func (c *Client) PubKey() string { return c.identity.PubKey }

// Connect establishes the relay pool. Idempotent.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connected {
		return nil
	}
	c.pool = nostr.NewSimplePool(context.Background())
	c.relayHealthy = make(map[string]bool, len(c.relays))
	for _, url := range c.relays {
		if _, err := c.pool.EnsureRelay(url); err != nil {
			logging.Warn(ctx, "relay connection failed during Connect", "relay", url, "error", err)
			c.relayHealthy[url] = false
		} else {
			c.relayHealthy[url] = true
		}
	}
	c.connected = true
	return nil
}

// Disconnect tears down the pool. Idempotent.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	c.pool = nil
}

// IsConnected reports whether Connect has been called without a matching
// Disconnect. It does not check relay reachability; see HasConnectedRelay.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// RelayStatuses reports per-relay connectivity and circuit state, surfacing
// the original crate's relay_status().
func (c *Client) RelayStatuses() []RelayStatus {
	c.mu.RLock()
	relays := append([]string{}, c.relays...)
	healthy := c.relayHealthy
	c.mu.RUnlock()

	out := make([]RelayStatus, 0, len(relays))
	for _, url := range relays {
		out = append(out, RelayStatus{
			URL:         url,
			Connected:   healthy[url],
			CircuitOpen: c.circuits.state(url),
		})
	}
	return out
}

// HasConnectedRelay reports whether at least one relay is currently reachable.
func (c *Client) HasConnectedRelay() bool {
	for _, st := range c.RelayStatuses() {
		if st.Connected {
			return true
		}
	}
	return false
}

func (c *Client) pool_() (*nostr.SimplePool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.connected || c.pool == nil {
		return nil, errNotConnected
	}
	return c.pool, nil
}

// publish signs evt and publishes it to every relay whose circuit is not open,
// mirroring the klppl-klistr Publisher: rate-limited, circuit-broken,
// success-if-any-relay-accepts.
func (c *Client) publish(ctx context.Context, evt nostr.Event) error {
	pool, err := c.pool_()
	if err != nil {
		return err
	}

	if err := evt.Sign(c.identity.SecretKey); err != nil {
		return fmt.Errorf("wireclient: sign event: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wireclient: rate limit wait: %w", err)
	}

	active := make([]string, 0, len(c.relays))
	for _, url := range c.relays {
		if c.circuits.state(url) != "open" {
			active = append(active, url)
		}
	}
	if len(active) == 0 {
		return fmt.Errorf("wireclient: all relay circuits are open")
	}

	publishCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-publishCtx.Done():
		}
	}()

	var succeeded int
	for result := range pool.PublishMany(publishCtx, active, evt) {
		if result.Error != nil {
			metrics.RelayPublishTotal.WithLabelValues(result.RelayURL, "error").Inc()
			c.circuits.get(result.RelayURL).Execute(func() (any, error) { return nil, result.Error })
			logging.Warn(ctx, "publish failed", "relay", result.RelayURL, "event_id", evt.ID, "error", result.Error)
			continue
		}
		metrics.RelayPublishTotal.WithLabelValues(result.RelayURL, "ok").Inc()
		c.circuits.get(result.RelayURL).Execute(func() (any, error) { return nil, nil })
		succeeded++
	}

	if succeeded == 0 {
		return fmt.Errorf("wireclient: failed to publish to all %d active relays", len(active))
	}
	return nil
}

// PublishRoom publishes a ROOM-kind (addressable) event for the given d-tag.
func (c *Client) PublishRoom(ctx context.Context, dTag, gameID, content string) error {
	return c.publish(ctx, nostr.Event{
		Kind:      KindRoom,
		CreatedAt: nostr.Now(),
		Content:   content,
		Tags: nostr.Tags{
			nostr.Tag{"d", dTag},
			nostr.Tag{"t", gameID},
		},
	})
}

// PublishEphemeral publishes an EPHEMERAL-kind event (not retained by relays).
func (c *Client) PublishEphemeral(ctx context.Context, dTag, content string) error {
	return c.publish(ctx, nostr.Event{
		Kind:      KindEphemeral,
		CreatedAt: nostr.Now(),
		Content:   content,
		Tags: nostr.Tags{
			nostr.Tag{"d", dTag},
		},
	})
}

// FetchRoom fetches the single latest ROOM event for dTag, or nil if none
// exists yet.
func (c *Client) FetchRoom(ctx context.Context, dTag string) (*nostr.Event, error) {
	pool, err := c.pool_()
	if err != nil {
		return nil, err
	}
	fetchCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	evt := pool.QuerySingle(fetchCtx, c.relays, nostr.Filter{
		Kinds: []int{KindRoom},
		Tags:  nostr.TagMap{"d": []string{dTag}},
		Limit: 1,
	})
	return evt, nil
}

// FetchRooms fetches every live ROOM event tagged with gameID, for discovery
// (§4.7).
func (c *Client) FetchRooms(ctx context.Context, gameID string) ([]*nostr.Event, error) {
	pool, err := c.pool_()
	if err != nil {
		return nil, err
	}
	fetchCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var events []*nostr.Event
	for ie := range pool.SubManyEose(fetchCtx, c.relays, nostr.Filters{{
		Kinds: []int{KindRoom},
		Tags:  nostr.TagMap{"t": []string{gameID}},
	}}) {
		if ie.Event != nil {
			events = append(events, ie.Event)
		}
	}
	return events, nil
}

// SubscribeRoom opens a live subscription for every kind-30078/25000 event
// tagged with dTag, delivering decoded RelayEvents until Close is called or
// ctx is cancelled. Events authored by this client's own identity are
// delivered too; the caller is responsible for self-filtering.
func (c *Client) SubscribeRoom(ctx context.Context, dTag string) (*Subscription, error) {
	pool, err := c.pool_()
	if err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	out := make(chan RelayEvent, 64)

	go func() {
		defer close(out)
		for ie := range pool.SubMany(subCtx, c.relays, nostr.Filters{{
			Kinds: []int{KindRoom, KindEphemeral},
			Tags:  nostr.TagMap{"d": []string{dTag}},
		}}) {
			if ie.Event == nil {
				continue
			}
			select {
			case out <- RelayEvent{Event: ie.Event, Relay: ie.Relay.URL}:
			case <-subCtx.Done():
				return
			}
		}
	}()

	return &Subscription{
		ID:     uuid.NewString(),
		Events: out,
		Close:  cancel,
	}, nil
}

var errNotConnected = fmt.Errorf("wireclient: not connected")
