package arena

import (
	"context"
	"time"

	"github.com/kako-jun/nostr-arena-go/internal/codec"
)

// SendReady publishes this instance's ready flag and re-evaluates the
// start condition for Ready/Countdown modes (§4.4.c).
func (a *Arena[T]) SendReady(ctx context.Context, ready bool) error {
	a.roomMu.Lock()
	if a.room.Status == StatusIdle {
		a.roomMu.Unlock()
		return ErrNotInRoom
	}
	p := a.players[a.identity.PubKey]
	p.Ready = ready
	a.players[a.identity.PubKey] = p
	roomID := a.room.RoomID
	a.roomMu.Unlock()

	content, err := codec.EncodeReady(codec.ReadyEventContent{Ready: ready})
	if err != nil {
		return errSerialization(err)
	}
	dTag := roomTag(a.config.GameID, roomID)
	if err := a.wire.PublishEphemeral(ctx, dTag, string(content)); err != nil {
		return errNostr(err)
	}

	a.checkAllReady()
	return nil
}

// StartGame publishes an authoritative GameStart ephemeral. Only the host may
// call it (§4.4.c); the start mode is not checked here, and peers act on the
// inbound GameStart only in Host mode.
func (a *Arena[T]) StartGame(ctx context.Context) error {
	a.roomMu.RLock()
	isHost := a.room.IsHost
	roomID := a.room.RoomID
	alreadyPlaying := a.room.Status == StatusPlaying
	a.roomMu.RUnlock()

	if !isHost {
		return errNotAuthorized("only the host may start the game")
	}
	if alreadyPlaying {
		return nil
	}

	content, err := codec.EncodeGameStart(codec.GameStartEventContent{})
	if err != nil {
		return errSerialization(err)
	}
	dTag := roomTag(a.config.GameID, roomID)
	if err := a.wire.PublishEphemeral(ctx, dTag, string(content)); err != nil {
		return errNostr(err)
	}

	a.transitionToPlaying()
	return nil
}

// transitionToPlaying sets status to Playing and emits GameStart exactly
// once per start, regardless of which caller triggers it (§8: "GameStart is
// emitted exactly once per start").
func (a *Arena[T]) transitionToPlaying() {
	a.roomMu.Lock()
	if a.room.Status == StatusPlaying {
		a.roomMu.Unlock()
		return
	}
	a.room.Status = StatusPlaying
	a.roomMu.Unlock()
	a.emit(EventGameStart{})
}

// checkAutoStart implements the Auto start mode: once the local player
// count reaches max_players, transition to Playing (§4.4.c).
func (a *Arena[T]) checkAutoStart() {
	if a.config.StartMode != StartModeAuto {
		return
	}
	a.roomMu.RLock()
	reached := len(a.players) >= a.config.MaxPlayers
	already := a.room.Status == StatusPlaying
	a.roomMu.RUnlock()
	if reached && !already {
		a.transitionToPlaying()
	}
}

// checkAllReady implements the Ready and Countdown start modes: once every
// known player's ready flag is true, run the mode-specific start sequence
// (§4.4.c).
func (a *Arena[T]) checkAllReady() {
	switch a.config.StartMode {
	case StartModeReady:
		a.runReadySequence()
	case StartModeCountdown:
		a.runCountdownSequence()
	}
}

func (a *Arena[T]) allPlayersReady() bool {
	a.roomMu.RLock()
	defer a.roomMu.RUnlock()
	if len(a.players) == 0 {
		return false
	}
	for _, p := range a.players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// tryBeginSequence claims the start-sequence guard, preventing a concurrent
// duplicate AllReady/CountdownStart. Returns false if a sequence is already
// running or the room is already Playing.
func (a *Arena[T]) tryBeginSequence() bool {
	a.roomMu.Lock()
	defer a.roomMu.Unlock()
	if a.room.Status == StatusPlaying || a.startSequenceOn {
		return false
	}
	a.startSequenceOn = true
	return true
}

func (a *Arena[T]) endSequence() {
	a.roomMu.Lock()
	a.startSequenceOn = false
	a.roomMu.Unlock()
}

func (a *Arena[T]) runReadySequence() {
	if !a.allPlayersReady() || !a.tryBeginSequence() {
		return
	}
	defer a.endSequence()
	a.emit(EventAllReady{})
	a.transitionToPlaying()
}

func (a *Arena[T]) runCountdownSequence() {
	if !a.allPlayersReady() || !a.tryBeginSequence() {
		return
	}

	n := a.config.CountdownSeconds
	tasks := a.ensureTasks()
	tasks.Go(func(ctx context.Context) {
		defer a.endSequence()
		a.emit(EventAllReady{})
		a.emit(EventCountdownStart{Seconds: n})
		for remaining := int64(n) - 1; remaining >= 0; remaining-- {
			select {
			case <-time.After(1 * time.Second):
			case <-ctx.Done():
				return
			}
			a.emit(EventCountdownTick{Remaining: uint32(remaining)})
		}
		a.transitionToPlaying()
	})
}
