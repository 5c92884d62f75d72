package arena

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testState struct {
	X int `json:"x"`
}

func testConfig(gameID string, mode StartMode) Config {
	return NewConfig(gameID,
		WithMaxPlayers(2),
		WithStartMode(mode),
		WithHeartbeatIntervalMs(60000), // keep heartbeat noise out of assertions
	)
}

func recvWithin[T any](t *testing.T, a *Arena[T], timeout time.Duration) Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ev, err := a.Recv(ctx)
	require.NoError(t, err, "expected an event within %s", timeout)
	return ev
}

func TestCreateThenJoinAutoMode(t *testing.T) {
	hub := newStubHub()
	cfg := testConfig("arena-test", StartModeAuto)

	a := newTestArena[testState](hub, "pub-a", cfg)
	b := newTestArena[testState](hub, "pub-b", cfg)
	defer a.Leave()
	defer b.Leave()

	url, err := a.Create(context.Background())
	require.NoError(t, err)
	assert.Contains(t, url, a.RoomState().RoomID)
	assert.True(t, a.RoomState().IsHost)
	assert.Equal(t, StatusWaiting, a.RoomState().Status)

	roomID := a.RoomState().RoomID
	require.NoError(t, b.Join(context.Background(), roomID))
	assert.Equal(t, a.RoomState().Seed, b.RoomState().Seed)

	ev := recvWithin(t, a, 2*time.Second)
	join, ok := ev.(EventPlayerJoin)
	require.True(t, ok, "expected EventPlayerJoin, got %T", ev)
	assert.Equal(t, "pub-b", join.PubKey)

	ev = recvWithin(t, a, 2*time.Second)
	_, ok = ev.(EventGameStart)
	require.True(t, ok, "expected EventGameStart, got %T", ev)

	assert.Equal(t, StatusPlaying, a.RoomState().Status)
	assert.Equal(t, StatusPlaying, b.RoomState().Status)
}

func TestJoinFailsRoomNotFound(t *testing.T) {
	hub := newStubHub()
	cfg := testConfig("arena-test", StartModeAuto)
	b := newTestArena[testState](hub, "pub-b", cfg)
	defer b.Leave()

	err := b.Join(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestJoinFailsRoomFull(t *testing.T) {
	hub := newStubHub()
	cfg := testConfig("arena-test", StartModeAuto)

	a := newTestArena[testState](hub, "pub-a", cfg)
	b := newTestArena[testState](hub, "pub-b", cfg)
	c := newTestArena[testState](hub, "pub-c", cfg)
	defer a.Leave()
	defer b.Leave()
	defer c.Leave()

	_, err := a.Create(context.Background())
	require.NoError(t, err)
	roomID := a.RoomState().RoomID

	require.NoError(t, b.Join(context.Background(), roomID))
	// Drain A's events from B's join so they don't leak into later assertions.
	_ = recvWithin(t, a, 2*time.Second)
	_ = recvWithin(t, a, 2*time.Second)

	// The host's own snapshot still reflects Waiting with two players only
	// after its own reconciliation republish; for this stub, join-acceptance
	// capacity is checked against the snapshot fetched at join time, which A
	// never republished. Force a republish to reflect both players.
	require.NoError(t, a.publishSnapshot(context.Background(), StatusPlaying))

	err = c.Join(context.Background(), roomID)
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestLeaveClearsRoomState(t *testing.T) {
	hub := newStubHub()
	cfg := testConfig("arena-test", StartModeHost)
	a := newTestArena[testState](hub, "pub-a", cfg)

	_, err := a.Create(context.Background())
	require.NoError(t, err)
	require.NotEqual(t, StatusIdle, a.RoomState().Status)

	a.Leave()
	assert.Equal(t, StatusIdle, a.RoomState().Status)
	assert.Empty(t, a.Players())
	assert.Equal(t, 0, a.PlayerCount())
}

func TestDeleteRoomRequiresHost(t *testing.T) {
	hub := newStubHub()
	cfg := testConfig("arena-test", StartModeHost)

	a := newTestArena[testState](hub, "pub-a", cfg)
	b := newTestArena[testState](hub, "pub-b", cfg)
	defer a.Leave()
	defer b.Leave()

	_, err := a.Create(context.Background())
	require.NoError(t, err)
	roomID := a.RoomState().RoomID
	require.NoError(t, b.Join(context.Background(), roomID))

	err = b.DeleteRoom(context.Background())
	var arenaErr *Error
	require.ErrorAs(t, err, &arenaErr)
	assert.Equal(t, KindNotAuthorized, arenaErr.Kind)

	require.NoError(t, a.DeleteRoom(context.Background()))
	assert.Equal(t, StatusIdle, a.RoomState().Status)
}
