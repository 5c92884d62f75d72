package arena

// RoomStatus is the lifecycle state of a room, per spec §3.
type RoomStatus string

const (
	StatusIdle     RoomStatus = "idle"
	StatusCreating RoomStatus = "creating"
	StatusWaiting  RoomStatus = "waiting"
	StatusJoining  RoomStatus = "joining"
	StatusReady    RoomStatus = "ready"
	StatusPlaying  RoomStatus = "playing"
	StatusFinished RoomStatus = "finished"
	StatusDeleted  RoomStatus = "deleted"
)

// StartMode selects which of the four start-mode sub-protocols (§4.4.c) governs
// the Ready/Waiting -> Playing transition.
type StartMode string

const (
	StartModeAuto      StartMode = "auto"
	StartModeReady     StartMode = "ready"
	StartModeCountdown StartMode = "countdown"
	StartModeHost      StartMode = "host"
)

// PlayerPresence is the host-reconciled view of a single player (§3).
type PlayerPresence struct {
	PubKey   string `json:"pubkey"`
	JoinedAt int64  `json:"joined_at"`
	LastSeen int64  `json:"last_seen"`
	Ready    bool   `json:"ready"`
}

// RoomState is the per-instance room state (§3). It is only ever mutated by
// the Arena Protocol, behind roomMu.
type RoomState struct {
	RoomID           string
	Status           RoomStatus
	IsHost           bool
	Seed             uint64
	CreatedAt        int64
	ExpiresAt        int64 // 0 = unset
	HasExpiresAt     bool
	RematchRequested bool
}

func idleRoomState() RoomState {
	return RoomState{Status: StatusIdle}
}

// RoomSnapshot is the content of a ROOM-kind (30078) event, authored solely
// by the host (§6).
type RoomSnapshot struct {
	Status      RoomStatus       `json:"status"`
	Seed        uint64           `json:"seed"`
	HostPubKey  string           `json:"host_pubkey"`
	MaxPlayers  int              `json:"max_players"`
	ExpiresAt   *int64           `json:"expires_at,omitempty"`
	Players     []PlayerPresence `json:"players"`
}

// RoomInfo is a single entry returned by ListRooms (§4.7).
type RoomInfo struct {
	RoomID      string
	GameID      string
	Status      RoomStatus
	HostPubKey  string
	PlayerCount int
	MaxPlayers  int
	CreatedAt   int64
	ExpiresAt   *int64
	Seed        uint64
}

// roomTag returns the distributed room identity, "{game_id}-{room_id}" (§4.1).
func roomTag(gameID, roomID string) string {
	return gameID + "-" + roomID
}
