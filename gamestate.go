package arena

import (
	"context"

	"github.com/kako-jun/nostr-arena-go/internal/codec"
)

// SendState publishes state as the caller's opaque per-player game state,
// throttled to at most one publish per state_throttle_ms (§4.4.b).
func (a *Arena[T]) SendState(ctx context.Context, state T) error {
	a.roomMu.Lock()
	if a.room.Status == StatusIdle {
		a.roomMu.Unlock()
		return ErrNotInRoom
	}
	now := nowMs()
	if now-a.lastStateUpdate < a.config.StateThrottleMs {
		a.roomMu.Unlock()
		return nil
	}
	a.lastStateUpdate = now
	a.playerStates[a.identity.PubKey] = state
	roomID := a.room.RoomID
	a.roomMu.Unlock()

	raw, err := marshalState(state)
	if err != nil {
		return err
	}
	content, err := codec.EncodeState(codec.StateEventContent{GameState: raw})
	if err != nil {
		return errSerialization(err)
	}

	dTag := roomTag(a.config.GameID, roomID)
	if err := a.wire.PublishEphemeral(ctx, dTag, string(content)); err != nil {
		return errNostr(err)
	}
	return nil
}

// GameOverResult carries the optional fields of a GameOver ephemeral.
type GameOverResult struct {
	Reason     string
	FinalScore *int64
	Winner     *string
}

// SendGameOver publishes the end of the current game and transitions local
// status to Finished (§4.4.b).
func (a *Arena[T]) SendGameOver(ctx context.Context, result GameOverResult) error {
	a.roomMu.Lock()
	if a.room.Status == StatusIdle {
		a.roomMu.Unlock()
		return ErrNotInRoom
	}
	roomID := a.room.RoomID
	a.room.Status = StatusFinished
	a.roomMu.Unlock()

	content, err := codec.EncodeGameOver(codec.GameOverEventContent{
		Reason:     result.Reason,
		FinalScore: result.FinalScore,
		Winner:     result.Winner,
	})
	if err != nil {
		return errSerialization(err)
	}

	dTag := roomTag(a.config.GameID, roomID)
	if err := a.wire.PublishEphemeral(ctx, dTag, string(content)); err != nil {
		return errNostr(err)
	}
	return nil
}

// RequestRematch publishes a rematch request. A no-op unless local status is
// Finished (§4.4.b).
func (a *Arena[T]) RequestRematch(ctx context.Context) error {
	a.roomMu.Lock()
	if a.room.Status != StatusFinished {
		a.roomMu.Unlock()
		return nil
	}
	a.room.RematchRequested = true
	roomID := a.room.RoomID
	a.roomMu.Unlock()

	content, err := codec.EncodeRematch(codec.RematchEventContent{Action: codec.RematchRequest})
	if err != nil {
		return errSerialization(err)
	}
	dTag := roomTag(a.config.GameID, roomID)
	if err := a.wire.PublishEphemeral(ctx, dTag, string(content)); err != nil {
		return errNostr(err)
	}
	return nil
}

// AcceptRematch generates a new seed, publishes acceptance, and resets local
// state for a fresh play session (§4.4.b).
func (a *Arena[T]) AcceptRematch(ctx context.Context) error {
	a.roomMu.RLock()
	inRoom := a.room.Status != StatusIdle
	roomID := a.room.RoomID
	a.roomMu.RUnlock()
	if !inRoom {
		return ErrNotInRoom
	}

	newSeed, err := generateSeed()
	if err != nil {
		return err
	}

	content, err := codec.EncodeRematch(codec.RematchEventContent{
		Action:  codec.RematchAccept,
		NewSeed: &newSeed,
	})
	if err != nil {
		return errSerialization(err)
	}
	dTag := roomTag(a.config.GameID, roomID)
	if err := a.wire.PublishEphemeral(ctx, dTag, string(content)); err != nil {
		return errNostr(err)
	}

	a.resetForRematch(newSeed)
	a.emit(EventRematchStart{NewSeed: newSeed})
	return nil
}

// resetForRematch applies a newly-accepted rematch locally: new seed, status
// Ready, cleared ready flags and player states.
func (a *Arena[T]) resetForRematch(newSeed uint64) {
	a.roomMu.Lock()
	defer a.roomMu.Unlock()
	a.room.Seed = newSeed
	a.room.Status = StatusReady
	a.room.RematchRequested = false
	for k, p := range a.players {
		p.Ready = false
		a.players[k] = p
	}
	a.playerStates = make(map[string]T)
}
