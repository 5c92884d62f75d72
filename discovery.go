package arena

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/nbd-wtf/go-nostr"

	"github.com/kako-jun/nostr-arena-go/internal/wireclient"
)

// ListRooms is the stateless discovery operation (§4.7): it opens a
// transient wire client, fetches the room-kind events tagged with gameID
// (the relay query itself carries no limit), considers at most the first
// 2*limit of them, filters out deleted and expired rooms, optionally filters by
// status, decodes into RoomInfo, truncates to limit, disconnects, and
// returns.
func ListRooms(ctx context.Context, gameID string, relays []string, statusFilter *RoomStatus, limit int) ([]RoomInfo, error) {
	identity, err := wireclient.GenerateIdentity()
	if err != nil {
		return nil, errNostr(err)
	}
	client := wireclient.New(identity, relays)
	if err := client.Connect(ctx); err != nil {
		return nil, errNostr(err)
	}
	defer client.Disconnect()

	return listRoomsWithClient(ctx, gameID, statusFilter, limit, client)
}

// listRoomsWithClient is ListRooms' implementation against an arbitrary
// wireClient, so discovery can be exercised against a stub in tests (§8).
func listRoomsWithClient(ctx context.Context, gameID string, statusFilter *RoomStatus, limit int, client wireClient) ([]RoomInfo, error) {
	events, err := client.FetchRooms(ctx, gameID)
	if err != nil {
		return nil, errNostr(err)
	}

	now := nowMs()
	out := make([]RoomInfo, 0, limit)
	for i, evt := range events {
		if i >= 2*limit {
			break
		}

		var snapshot RoomSnapshot
		if err := json.Unmarshal([]byte(evt.Content), &snapshot); err != nil {
			continue
		}
		if snapshot.Status == StatusDeleted {
			continue
		}
		if snapshot.ExpiresAt != nil && *snapshot.ExpiresAt < now {
			continue
		}
		if statusFilter != nil && snapshot.Status != *statusFilter {
			continue
		}

		roomID := extractRoomID(gameID, evt)
		out = append(out, RoomInfo{
			RoomID:      roomID,
			GameID:      gameID,
			Status:      snapshot.Status,
			HostPubKey:  snapshot.HostPubKey,
			PlayerCount: len(snapshot.Players),
			MaxPlayers:  snapshot.MaxPlayers,
			CreatedAt:   int64(evt.CreatedAt) * 1000,
			ExpiresAt:   snapshot.ExpiresAt,
			Seed:        snapshot.Seed,
		})
		if len(out) >= limit {
			break
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// extractRoomID strips the "{game_id}-" prefix from the event's d-tag; if
// the prefix is absent (a cross-version event), the raw value is retained
// rather than rejecting the event (§4.7, §9).
func extractRoomID(gameID string, evt *nostr.Event) string {
	var raw string
	for _, tag := range evt.Tags {
		if len(tag) >= 2 && tag[0] == "d" {
			raw = tag[1]
			break
		}
	}
	if raw == "" {
		return ""
	}
	prefix := gameID + "-"
	if strings.HasPrefix(raw, prefix) {
		return strings.TrimPrefix(raw, prefix)
	}
	return raw
}
