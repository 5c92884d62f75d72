package arena

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/kako-jun/nostr-arena-go/internal/logging"
)

// DefaultRelays mirrors the original crate's default relay set.
var DefaultRelays = []string{
	"wss://relay.damus.io",
	"wss://nos.lol",
	"wss://relay.nostr.band",
}

// Config is the immutable-after-construction configuration of spec §3.
type Config struct {
	GameID                string
	Relays                []string
	RoomExpiryMs          int64
	HeartbeatIntervalMs   int64
	DisconnectThresholdMs int64
	StateThrottleMs       int64
	JoinTimeoutMs         int64
	MaxPlayers            int
	StartMode             StartMode
	CountdownSeconds      uint32
	BaseURL               string
}

// Option mutates a Config under construction. Mirrors the builder methods of
// the original ArenaConfig (types.rs), translated to Go's functional-options
// idiom.
type Option func(*Config)

func WithRelays(relays []string) Option {
	return func(c *Config) { c.Relays = append([]string{}, relays...) }
}

func WithRoomExpiryMs(ms int64) Option {
	return func(c *Config) { c.RoomExpiryMs = ms }
}

func WithMaxPlayers(n int) Option {
	return func(c *Config) { c.MaxPlayers = n }
}

func WithStartMode(mode StartMode) Option {
	return func(c *Config) { c.StartMode = mode }
}

func WithCountdownSeconds(secs uint32) Option {
	return func(c *Config) { c.CountdownSeconds = secs }
}

func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

func WithHeartbeatIntervalMs(ms int64) Option {
	return func(c *Config) { c.HeartbeatIntervalMs = ms }
}

func WithDisconnectThresholdMs(ms int64) Option {
	return func(c *Config) { c.DisconnectThresholdMs = ms }
}

func WithStateThrottleMs(ms int64) Option {
	return func(c *Config) { c.StateThrottleMs = ms }
}

func WithJoinTimeoutMs(ms int64) Option {
	return func(c *Config) { c.JoinTimeoutMs = ms }
}

// NewConfig builds a Config with spec-mandated defaults, then applies opts.
// gameID is required and non-empty; an empty gameID produces a Config that
// New() will reject.
func NewConfig(gameID string, opts ...Option) Config {
	c := Config{
		GameID:                gameID,
		Relays:                append([]string{}, DefaultRelays...),
		RoomExpiryMs:          0,
		HeartbeatIntervalMs:   3000,
		DisconnectThresholdMs: 10000,
		StateThrottleMs:       100,
		JoinTimeoutMs:         30000,
		MaxPlayers:            2,
		StartMode:             StartModeAuto,
		CountdownSeconds:      3,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// ConfigFromEnv overlays relay list, start mode, and base URL from environment
// variables on top of NewConfig's defaults, following the teacher's
// getEnvOrDefault pattern (internal/v1/config/config.go). A .env file in the
// working directory is loaded first if present; its absence is not an error.
//
// Recognized variables: NOSTR_ARENA_RELAYS (comma-separated),
// NOSTR_ARENA_MAX_PLAYERS, NOSTR_ARENA_START_MODE, NOSTR_ARENA_BASE_URL.
func ConfigFromEnv(gameID string) Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logging.Warn(nil, "failed to load .env file", "error", err)
	}

	c := NewConfig(gameID)

	if relays := os.Getenv("NOSTR_ARENA_RELAYS"); relays != "" {
		c.Relays = splitAndTrim(relays)
	}
	if n := os.Getenv("NOSTR_ARENA_MAX_PLAYERS"); n != "" {
		if parsed, err := strconv.Atoi(n); err == nil && parsed > 0 {
			c.MaxPlayers = parsed
		}
	}
	if mode := os.Getenv("NOSTR_ARENA_START_MODE"); mode != "" {
		c.StartMode = StartMode(strings.ToLower(mode))
	}
	if base := os.Getenv("NOSTR_ARENA_BASE_URL"); base != "" {
		c.BaseURL = base
	}

	return c
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (c Config) validate() error {
	if c.GameID == "" {
		return errInvalidRoomData("game_id must not be empty")
	}
	if c.MaxPlayers <= 0 {
		return errInvalidRoomData("max_players must be positive")
	}
	return nil
}

// roomURL formats the shareable room URL per §4.4 step 7 / §6.
func (c Config) roomURL(roomID string) string {
	return c.BaseURL + "/battle/" + roomID
}
