package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeJoin(t *testing.T) {
	raw, err := EncodeJoin(JoinEventContent{PlayerPubKey: "abc"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"join","player_pubkey":"abc"}`, string(raw))

	d, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, KindJoin, d.Kind)
	require.NotNil(t, d.Join)
	assert.Equal(t, "abc", d.Join.PlayerPubKey)
}

func TestEncodeDecodeState(t *testing.T) {
	raw, err := EncodeState(StateEventContent{GameState: json.RawMessage(`{"x":1}`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"state","game_state":{"x":1}}`, string(raw))

	d, err := Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, d.State)
	assert.JSONEq(t, `{"x":1}`, string(d.State.GameState))
}

func TestEncodeDecodeGameOver(t *testing.T) {
	score := int64(42)
	winner := "abc"
	raw, err := EncodeGameOver(GameOverEventContent{Reason: "victory", FinalScore: &score, Winner: &winner})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"gameover","reason":"victory","final_score":42,"winner":"abc"}`, string(raw))

	d, err := Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, d.GameOver)
	assert.Equal(t, "victory", d.GameOver.Reason)
	require.NotNil(t, d.GameOver.FinalScore)
	assert.EqualValues(t, 42, *d.GameOver.FinalScore)
	require.NotNil(t, d.GameOver.Winner)
	assert.Equal(t, "abc", *d.GameOver.Winner)
}

func TestEncodeDecodeGameOverOmitsAbsentOptionalFields(t *testing.T) {
	raw, err := EncodeGameOver(GameOverEventContent{Reason: "disconnect"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"gameover","reason":"disconnect"}`, string(raw))
}

func TestEncodeDecodeRematch(t *testing.T) {
	raw, err := EncodeRematch(RematchEventContent{Action: RematchRequest})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"rematch","action":"request"}`, string(raw))

	d, err := Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, d.Rematch)
	assert.Equal(t, RematchRequest, d.Rematch.Action)
	assert.Nil(t, d.Rematch.NewSeed)
}

func TestEncodeDecodeRematchAcceptCarriesNewSeed(t *testing.T) {
	seed := uint64(99)
	raw, err := EncodeRematch(RematchEventContent{Action: RematchAccept, NewSeed: &seed})
	require.NoError(t, err)

	d, err := Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, d.Rematch)
	require.NotNil(t, d.Rematch.NewSeed)
	assert.EqualValues(t, 99, *d.Rematch.NewSeed)
}

func TestEncodeDecodeHeartbeat(t *testing.T) {
	raw, err := EncodeHeartbeat(HeartbeatEventContent{Timestamp: 123})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"heartbeat","timestamp":123}`, string(raw))

	d, err := Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, d.Heartbeat)
	assert.EqualValues(t, 123, d.Heartbeat.Timestamp)
}

func TestEncodeDecodeReady(t *testing.T) {
	raw, err := EncodeReady(ReadyEventContent{Ready: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"ready","ready":true}`, string(raw))

	d, err := Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, d.Ready)
	assert.True(t, d.Ready.Ready)
}

func TestEncodeDecodeGameStart(t *testing.T) {
	raw, err := EncodeGameStart(GameStartEventContent{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"gamestart"}`, string(raw))

	d, err := Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, d.GameStart)
}

func TestEncodeDecodeRoom(t *testing.T) {
	type fakeSnapshot struct {
		Status     string `json:"status"`
		HostPubKey string `json:"host_pubkey"`
	}
	raw, err := EncodeRoom(fakeSnapshot{Status: "waiting", HostPubKey: "host"})
	require.NoError(t, err)

	d, err := Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, d.Room)

	var got fakeSnapshot
	require.NoError(t, DecodeRaw(d.Room.Snapshot, &got))
	assert.Equal(t, "waiting", got.Status)
	assert.Equal(t, "host", got.HostPubKey)
}

func TestDecodeUnknownVariantIsIgnoredNotError(t *testing.T) {
	raw := []byte(`{"type":"future_feature","anything":true}`)

	d, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, Kind("future_feature"), d.Kind)
	assert.Nil(t, d.Join)
	assert.Nil(t, d.Room)
}

func TestDecodeMalformedEnvelopeIsError(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	assert.Error(t, err)
}
