package arena

import (
	"context"

	"github.com/nbd-wtf/go-nostr"

	"github.com/kako-jun/nostr-arena-go/internal/wireclient"
)

// wireClient is the seam between the Arena Protocol and the relay network.
// *wireclient.Client implements it; tests substitute a stub so the start-mode
// and lifecycle scenarios of §8 run without a live relay network.
type wireClient interface {
	PubKey() string
	Connect(ctx context.Context) error
	Disconnect()
	IsConnected() bool
	RelayStatuses() []wireclient.RelayStatus
	PublishRoom(ctx context.Context, dTag, gameID, content string) error
	PublishEphemeral(ctx context.Context, dTag, content string) error
	FetchRoom(ctx context.Context, dTag string) (*nostr.Event, error)
	FetchRooms(ctx context.Context, gameID string) ([]*nostr.Event, error)
	SubscribeRoom(ctx context.Context, dTag string) (*wireclient.Subscription, error)
}
