package arena

import (
	"context"

	"github.com/nbd-wtf/go-nostr"

	"github.com/kako-jun/nostr-arena-go/internal/codec"
	"github.com/kako-jun/nostr-arena-go/internal/logging"
	"github.com/kako-jun/nostr-arena-go/internal/wireclient"
)

// dispatchInbound consumes the room subscription until it closes or ctx is
// cancelled, filtering self-authored events and routing each decoded
// ephemeral to its handler (§4.5). Self-event echo filtering is mandatory:
// relays deliver own-published events back to their author.
func (a *Arena[T]) dispatchInbound(ctx context.Context, sub *wireclient.Subscription) {
	for {
		select {
		case re, ok := <-sub.Events:
			if !ok {
				return
			}
			a.handleInboundEvent(ctx, re.Event)
		case <-ctx.Done():
			return
		}
	}
}

func (a *Arena[T]) handleInboundEvent(ctx context.Context, evt *nostr.Event) {
	if evt == nil || evt.PubKey == a.identity.PubKey {
		return
	}
	if evt.Kind == wireclient.KindRoom {
		// Room snapshots on the live stream are not consumed by the running
		// dispatcher; only join() reads them (§4.5).
		return
	}

	decoded, err := codec.Decode([]byte(evt.Content))
	if err != nil {
		logging.Warn(logging.WithFields(ctx, "", "", evt.PubKey), "dropping malformed inbound event", "error", err)
		return
	}

	// Every variant but Join carries no pubkey field of its own (§6); the
	// author is the publishing Nostr event's own pubkey.
	author := evt.PubKey

	switch decoded.Kind {
	case codec.KindJoin:
		a.handleJoin(decoded.Join)
	case codec.KindState:
		a.handleState(author, decoded.State)
	case codec.KindHeartbeat:
		a.handleHeartbeat(author, decoded.Heartbeat)
	case codec.KindGameOver:
		a.handleGameOver(author, decoded.GameOver)
	case codec.KindRematch:
		a.handleRematch(author, decoded.Rematch)
	case codec.KindReady:
		a.handleReady(author, decoded.Ready)
	case codec.KindGameStart:
		a.handleGameStart()
	case codec.KindRoom:
		// Room snapshots are rare on the ephemeral stream; ignore (§4.5).
	default:
		// Unknown variant: ignore for forward compatibility (§4.3).
	}
}

func (a *Arena[T]) handleJoin(join *codec.JoinEventContent) {
	if join == nil {
		return
	}
	now := nowMs()
	a.roomMu.Lock()
	a.players[join.PlayerPubKey] = PlayerPresence{
		PubKey:   join.PlayerPubKey,
		JoinedAt: now,
		LastSeen: now,
		Ready:    false,
	}
	a.roomMu.Unlock()

	a.emit(EventPlayerJoin{PubKey: join.PlayerPubKey})
	a.checkAutoStart()
}

func (a *Arena[T]) handleState(author string, state *codec.StateEventContent) {
	if state == nil {
		return
	}
	a.bumpLastSeen(author, nowMs())

	var decoded T
	if err := codec.DecodeRaw(state.GameState, &decoded); err != nil {
		// Malformed per-game payload: drop silently (§4.5, §7).
		return
	}

	a.roomMu.Lock()
	a.playerStates[author] = decoded
	a.roomMu.Unlock()

	a.emit(EventPlayerState[T]{PubKey: author, State: decoded})
}

func (a *Arena[T]) handleHeartbeat(author string, hb *codec.HeartbeatEventContent) {
	if hb == nil {
		return
	}
	ts := hb.Timestamp
	if ts <= 0 {
		ts = nowMs()
	}
	a.bumpLastSeen(author, ts)
}

func (a *Arena[T]) bumpLastSeen(pubkey string, ts int64) {
	a.roomMu.Lock()
	defer a.roomMu.Unlock()
	p, ok := a.players[pubkey]
	if !ok {
		return
	}
	if ts > p.LastSeen {
		p.LastSeen = ts
		a.players[pubkey] = p
	}
}

func (a *Arena[T]) handleGameOver(author string, g *codec.GameOverEventContent) {
	if g == nil {
		return
	}
	a.roomMu.Lock()
	a.room.Status = StatusFinished
	a.roomMu.Unlock()

	a.emit(EventPlayerGameOver{
		PubKey:     author,
		Reason:     g.Reason,
		FinalScore: g.FinalScore,
		Winner:     g.Winner,
	})
}

func (a *Arena[T]) handleRematch(author string, r *codec.RematchEventContent) {
	if r == nil {
		return
	}
	switch r.Action {
	case codec.RematchRequest:
		a.emit(EventRematchRequested{PubKey: author})
	case codec.RematchAccept:
		if r.NewSeed == nil {
			return
		}
		a.resetForRematch(*r.NewSeed)
		a.emit(EventRematchStart{NewSeed: *r.NewSeed})
	}
}

func (a *Arena[T]) handleReady(author string, r *codec.ReadyEventContent) {
	if r == nil {
		return
	}
	a.roomMu.Lock()
	p, ok := a.players[author]
	if ok {
		p.Ready = r.Ready
		a.players[author] = p
	}
	a.roomMu.Unlock()

	a.checkAllReady()
}

func (a *Arena[T]) handleGameStart() {
	if a.config.StartMode != StartModeHost {
		return
	}
	a.transitionToPlaying()
}
