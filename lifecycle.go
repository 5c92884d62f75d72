package arena

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kako-jun/nostr-arena-go/internal/codec"
	"github.com/kako-jun/nostr-arena-go/internal/logging"
	"github.com/kako-jun/nostr-arena-go/internal/metrics"
	"github.com/kako-jun/nostr-arena-go/internal/spawn"
)

// Create opens a new room with this instance as host and returns its
// shareable URL (§4.4).
func (a *Arena[T]) Create(ctx context.Context) (string, error) {
	if err := a.Connect(ctx); err != nil {
		return "", err
	}

	a.roomMu.Lock()
	if a.room.Status != StatusIdle {
		a.roomMu.Unlock()
		return "", ErrAlreadyInRoom
	}
	a.roomMu.Unlock()

	roomID, err := generateRoomID()
	if err != nil {
		return "", err
	}
	seed, err := generateSeed()
	if err != nil {
		return "", err
	}
	createdAt := nowMs()

	a.roomMu.Lock()
	a.room = RoomState{
		RoomID:    roomID,
		Status:    StatusCreating,
		IsHost:    true,
		Seed:      seed,
		CreatedAt: createdAt,
	}
	if a.config.RoomExpiryMs > 0 {
		a.room.ExpiresAt = createdAt + a.config.RoomExpiryMs
		a.room.HasExpiresAt = true
	}
	a.players[a.identity.PubKey] = PlayerPresence{
		PubKey:   a.identity.PubKey,
		JoinedAt: createdAt,
		LastSeen: createdAt,
		Ready:    false,
	}
	a.playerStates = make(map[string]T)
	a.roomMu.Unlock()

	if err := a.publishSnapshot(ctx, StatusWaiting); err != nil {
		return "", err
	}

	a.roomMu.Lock()
	a.room.Status = StatusWaiting
	a.roomMu.Unlock()

	if err := a.startRoomTasks(ctx, roomID, true); err != nil {
		return "", err
	}

	metrics.ActiveRooms.Inc()
	return a.GetRoomURL(), nil
}

// Join fetches the room's current snapshot and attempts to become a member
// of it (§4.4).
func (a *Arena[T]) Join(ctx context.Context, roomID string) error {
	if err := a.Connect(ctx); err != nil {
		return err
	}

	a.roomMu.Lock()
	if a.room.Status != StatusIdle {
		a.roomMu.Unlock()
		return ErrAlreadyInRoom
	}
	a.roomMu.Unlock()

	dTag := roomTag(a.config.GameID, roomID)
	evt, err := a.wire.FetchRoom(ctx, dTag)
	if err != nil {
		return errNostr(err)
	}
	if evt == nil {
		return ErrRoomNotFound
	}

	var snapshot RoomSnapshot
	if jsonErr := json.Unmarshal([]byte(evt.Content), &snapshot); jsonErr != nil {
		return errInvalidRoomData("malformed room snapshot: " + jsonErr.Error())
	}
	if snapshot.Status == StatusDeleted {
		return ErrRoomDeleted
	}
	now := nowMs()
	if snapshot.ExpiresAt != nil && *snapshot.ExpiresAt < now {
		return ErrRoomExpired
	}
	if len(snapshot.Players) >= snapshot.MaxPlayers {
		return ErrRoomFull
	}

	a.roomMu.Lock()
	a.room = RoomState{
		RoomID: roomID,
		Status: StatusJoining,
		IsHost: false,
		Seed:   snapshot.Seed,
	}
	if snapshot.ExpiresAt != nil {
		a.room.ExpiresAt = *snapshot.ExpiresAt
		a.room.HasExpiresAt = true
	}
	a.players = make(map[string]PlayerPresence, len(snapshot.Players)+1)
	for _, p := range snapshot.Players {
		a.players[p.PubKey] = p
	}
	a.players[a.identity.PubKey] = PlayerPresence{
		PubKey:   a.identity.PubKey,
		JoinedAt: now,
		LastSeen: now,
		Ready:    false,
	}
	a.playerStates = make(map[string]T)
	a.roomMu.Unlock()

	joinContent, err := codec.EncodeJoin(codec.JoinEventContent{PlayerPubKey: a.identity.PubKey})
	if err != nil {
		return errSerialization(err)
	}
	a.publishJoinWithRetry(dTag, joinContent)

	a.roomMu.Lock()
	a.room.Status = StatusReady
	a.roomMu.Unlock()

	if err := a.startRoomTasks(ctx, roomID, false); err != nil {
		return err
	}

	metrics.ActiveRooms.Inc()
	a.checkAutoStart()
	return nil
}

// publishJoinWithRetry fires the Join ephemeral immediately and again at
// +500ms and +1500ms, a reliability hack against relay drop (§4.4, §9).
func (a *Arena[T]) publishJoinWithRetry(dTag string, content []byte) {
	publish := func() {
		ctx := context.Background()
		if err := a.wire.PublishEphemeral(ctx, dTag, string(content)); err != nil {
			logging.Warn(ctx, "join publish failed", "error", err)
		}
	}
	publish()

	tasks := a.ensureTasks()
	for _, delay := range []time.Duration{500 * time.Millisecond, 1500 * time.Millisecond} {
		delay := delay
		tasks.Go(func(ctx context.Context) {
			select {
			case <-time.After(delay):
				publish()
			case <-ctx.Done():
			}
		})
	}
}

// ensureTasks returns the room's spawn.Group, creating it if Join's retry
// scheduling runs before startRoomTasks does.
func (a *Arena[T]) ensureTasks() *spawn.Group {
	a.subMu.Lock()
	defer a.subMu.Unlock()
	if a.tasks == nil {
		a.tasks = spawn.NewGroup(context.Background())
	}
	return a.tasks
}

// Leave clears the current room locally. Departures are inferred by peers
// via heartbeat timeout; no wire message is sent (§4.4).
func (a *Arena[T]) Leave() {
	a.stopBackgroundTasks()

	a.roomMu.Lock()
	wasIdle := a.room.Status == StatusIdle
	a.room = idleRoomState()
	a.players = make(map[string]PlayerPresence)
	a.playerStates = make(map[string]T)
	a.roomMu.Unlock()

	if !wasIdle {
		metrics.ActiveRooms.Dec()
	}
}

// DeleteRoom publishes a Deleted snapshot (host-only) and then leaves.
func (a *Arena[T]) DeleteRoom(ctx context.Context) error {
	a.roomMu.RLock()
	isHost := a.room.IsHost
	status := a.room.Status
	a.roomMu.RUnlock()

	if status == StatusIdle {
		return ErrNotInRoom
	}
	if !isHost {
		return errNotAuthorized("only the host may delete a room")
	}

	if err := a.publishSnapshot(ctx, StatusDeleted); err != nil {
		return err
	}
	a.Leave()
	return nil
}

// Reconnect leaves the current room, if any, and joins roomID fresh.
func (a *Arena[T]) Reconnect(ctx context.Context, roomID string) error {
	a.Leave()
	return a.Join(ctx, roomID)
}

// publishSnapshot publishes a RoomSnapshot reflecting the current in-memory
// room state at the given status, authored solely by the host (§4.4, §4.6).
func (a *Arena[T]) publishSnapshot(ctx context.Context, status RoomStatus) error {
	a.roomMu.RLock()
	snapshot := RoomSnapshot{
		Status:     status,
		Seed:       a.room.Seed,
		HostPubKey: a.identity.PubKey,
		MaxPlayers: a.config.MaxPlayers,
		Players:    make([]PlayerPresence, 0, len(a.players)),
	}
	if a.room.HasExpiresAt {
		exp := a.room.ExpiresAt
		snapshot.ExpiresAt = &exp
	}
	if status != StatusDeleted {
		for _, p := range a.players {
			snapshot.Players = append(snapshot.Players, p)
		}
	}
	roomID := a.room.RoomID
	a.roomMu.RUnlock()

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return errSerialization(err)
	}

	dTag := roomTag(a.config.GameID, roomID)
	if err := a.wire.PublishRoom(ctx, dTag, a.config.GameID, string(raw)); err != nil {
		return errNostr(err)
	}
	return nil
}

// startRoomTasks opens the inbound subscription and starts the heartbeat
// loop, plus reconciliation if this instance is host (§4.4 step 6, §4.6).
func (a *Arena[T]) startRoomTasks(ctx context.Context, roomID string, isHost bool) error {
	dTag := roomTag(a.config.GameID, roomID)
	sub, err := a.wire.SubscribeRoom(context.Background(), dTag)
	if err != nil {
		return errNostr(err)
	}

	tasks := a.ensureTasks()
	a.subMu.Lock()
	a.sub = sub
	a.subMu.Unlock()

	tagged := func(ctx context.Context) context.Context {
		return logging.WithFields(ctx, a.config.GameID, roomID, a.identity.PubKey)
	}
	tasks.Go(func(ctx context.Context) {
		a.dispatchInbound(tagged(ctx), sub)
	})
	tasks.Go(func(ctx context.Context) {
		a.runHeartbeat(tagged(ctx), dTag)
	})
	if isHost {
		tasks.Go(func(ctx context.Context) {
			a.runReconciliation(tagged(ctx))
		})
	}
	return nil
}
