package arena

import (
	"context"
	"time"

	"github.com/kako-jun/nostr-arena-go/internal/codec"
	"github.com/kako-jun/nostr-arena-go/internal/logging"
	"github.com/kako-jun/nostr-arena-go/internal/metrics"
)

// runHeartbeat publishes a Heartbeat ephemeral every heartbeat_interval_ms
// while this instance has an active room. Terminates when the room is left
// or ctx is cancelled (§4.6).
func (a *Arena[T]) runHeartbeat(ctx context.Context, dTag string) {
	interval := time.Duration(a.config.HeartbeatIntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = 3 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if a.RoomState().RoomID == "" {
				return
			}
			content, err := codec.EncodeHeartbeat(codec.HeartbeatEventContent{
				Timestamp: nowMs(),
			})
			if err != nil {
				logging.Warn(ctx, "heartbeat encode failed", "error", err)
				continue
			}
			if err := a.wire.PublishEphemeral(ctx, dTag, string(content)); err != nil {
				// Heartbeat publish failures are logged and never surfaced (§7).
				logging.Warn(ctx, "heartbeat publish failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// runReconciliation runs the host-only presence sweep every 30 seconds:
// drop players that have aged past the disconnect threshold and republish
// the authoritative RoomSnapshot (§4.6). This, together with heartbeats, is
// the sole mechanism by which the distributed roster converges.
func (a *Arena[T]) runReconciliation(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.reconcileOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *Arena[T]) reconcileOnce(ctx context.Context) {
	roomID := a.RoomState().RoomID
	if roomID == "" {
		return
	}

	now := nowMs()
	var dropped []string

	a.roomMu.Lock()
	for pk, p := range a.players {
		if pk == a.identity.PubKey {
			continue
		}
		if now-p.LastSeen > a.config.DisconnectThresholdMs {
			dropped = append(dropped, pk)
			delete(a.players, pk)
			delete(a.playerStates, pk)
		}
	}
	a.roomMu.Unlock()

	metrics.PresenceReconciliations.WithLabelValues(roomID).Inc()
	for _, pk := range dropped {
		metrics.PlayersDroppedTotal.WithLabelValues(roomID).Inc()
		a.emit(EventPlayerLeave{PubKey: pk})
	}

	if err := a.publishSnapshot(ctx, a.RoomState().Status); err != nil {
		logging.Warn(ctx, "reconciliation snapshot publish failed", "error", err)
	}
}
