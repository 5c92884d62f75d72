package arena

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRoomsFiltersDeletedExpiredAndByStatus(t *testing.T) {
	hub := newStubHub()
	cfg := testConfig("arena-test", StartModeAuto)

	a := newTestArena[testState](hub, "pub-a", cfg)
	defer a.Leave()
	_, err := a.Create(context.Background())
	require.NoError(t, err)
	waitingRoomID := a.RoomState().RoomID

	b := newTestArena[testState](hub, "pub-b", cfg)
	defer b.Leave()
	_, err = b.Create(context.Background())
	require.NoError(t, err)
	require.NoError(t, b.DeleteRoom(context.Background()))

	c := newTestArena[testState](hub, "pub-c", cfg)
	defer c.Leave()
	_, err = c.Create(context.Background())
	require.NoError(t, err)
	require.NoError(t, c.publishSnapshot(context.Background(), StatusPlaying))

	// A waiting room whose expiry lies in the past.
	hub.publishRoom(roomTag("arena-test", "old123"),
		`{"status":"waiting","seed":1,"host_pubkey":"pub-x","max_players":2,"expires_at":1,"players":[]}`)

	rooms, err := listRoomsWithClient(context.Background(), "arena-test", nil, 10, newStubWireClient(hub, "pub-observer"))
	require.NoError(t, err)

	ids := make(map[string]RoomStatus)
	for _, r := range rooms {
		ids[r.RoomID] = r.Status
	}
	assert.Equal(t, StatusWaiting, ids[waitingRoomID])
	assert.Len(t, rooms, 2, "deleted and expired rooms must be excluded, leaving the waiting and playing rooms")

	waitingOnly := StatusWaiting
	filtered, err := listRoomsWithClient(context.Background(), "arena-test", &waitingOnly, 10, newStubWireClient(hub, "pub-observer"))
	require.NoError(t, err)
	for _, r := range filtered {
		assert.Equal(t, StatusWaiting, r.Status)
	}
	assert.Len(t, filtered, 1)
}

func TestListRoomsRespectsLimit(t *testing.T) {
	hub := newStubHub()
	cfg := testConfig("arena-test", StartModeAuto)

	for i := 0; i < 3; i++ {
		inst := newTestArena[testState](hub, "pub-"+string(rune('a'+i)), cfg)
		defer inst.Leave()
		_, err := inst.Create(context.Background())
		require.NoError(t, err)
	}

	rooms, err := listRoomsWithClient(context.Background(), "arena-test", nil, 2, newStubWireClient(hub, "pub-observer"))
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
}
