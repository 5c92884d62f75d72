// Package metrics declares the Prometheus instrumentation for the Arena
// protocol, following the naming convention and promauto construction style
// of the teacher's internal/v1/metrics/metrics.go: namespace_subsystem_name,
// Gauge for current state, Counter for cumulative events.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveRooms tracks rooms this process currently participates in (0 or 1
	// per Arena instance, summed across instances in a process).
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "nostr_arena",
		Subsystem: "room",
		Name:      "active_rooms",
		Help:      "Current number of rooms this process is a member of.",
	})

	// RoomPlayers tracks the locally-observed player count per room.
	RoomPlayers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "nostr_arena",
		Subsystem: "room",
		Name:      "players",
		Help:      "Locally-observed player count for a room.",
	}, []string{"room_id"})

	// EventQueueDepth tracks how many decoded ArenaEvents are buffered,
	// awaiting TryRecv/Recv by the embedding application.
	EventQueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "nostr_arena",
		Subsystem: "fanout",
		Name:      "queue_depth",
		Help:      "Number of buffered ArenaEvents awaiting delivery.",
	}, []string{"room_id"})

	// EventsDroppedTotal counts events dropped because the fan-out queue
	// was full (§5's "senders drop on full with a warning").
	EventsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nostr_arena",
		Subsystem: "fanout",
		Name:      "events_dropped_total",
		Help:      "Total ArenaEvents dropped because the fan-out queue was full.",
	}, []string{"room_id"})

	// RelayPublishTotal counts publish attempts per relay and outcome.
	RelayPublishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nostr_arena",
		Subsystem: "wire",
		Name:      "relay_publish_total",
		Help:      "Total publish attempts per relay.",
	}, []string{"relay", "status"})

	// RelayCircuitState tracks the per-relay circuit breaker state:
	// 0 closed, 1 open, 2 half-open.
	RelayCircuitState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "nostr_arena",
		Subsystem: "wire",
		Name:      "relay_circuit_state",
		Help:      "Current state of the per-relay circuit breaker (0 closed, 1 open, 2 half-open).",
	}, []string{"relay"})

	// PresenceReconciliations counts host-side reconciliation sweeps (§4.6).
	PresenceReconciliations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nostr_arena",
		Subsystem: "presence",
		Name:      "reconciliations_total",
		Help:      "Total host-side presence reconciliation sweeps performed.",
	}, []string{"room_id"})

	// PlayersDroppedTotal counts players dropped by reconciliation for
	// exceeding the disconnect threshold.
	PlayersDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nostr_arena",
		Subsystem: "presence",
		Name:      "players_dropped_total",
		Help:      "Total players dropped by host reconciliation for exceeding the disconnect threshold.",
	}, []string{"room_id"})
)
