// Package logging wraps a process-global zap logger, following the teacher's
// internal/v1/logging/logger.go: lazy-init via sync.Once, dev/prod config
// switch, and a small set of level helpers that thread fields through.
package logging

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
	once   sync.Once
)

type contextKey string

// Context keys an Arena sets via context.WithValue so every log line emitted
// during a call carries its game/room/player identity automatically,
// following the teacher's CorrelationIDKey/UserIDKey/RoomIDKey convention.
const (
	GameIDKey contextKey = "game_id"
	RoomIDKey contextKey = "room_id"
	PubKeyKey contextKey = "pubkey"
)

// WithFields returns a child context carrying the given game/room/pubkey
// values for subsequent logging calls. Empty strings are not attached.
func WithFields(ctx context.Context, gameID, roomID, pubkey string) context.Context {
	if gameID != "" {
		ctx = context.WithValue(ctx, GameIDKey, gameID)
	}
	if roomID != "" {
		ctx = context.WithValue(ctx, RoomIDKey, roomID)
	}
	if pubkey != "" {
		ctx = context.WithValue(ctx, PubKeyKey, pubkey)
	}
	return ctx
}

func contextFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	var fs []zap.Field
	if v, ok := ctx.Value(GameIDKey).(string); ok {
		fs = append(fs, zap.String("game_id", v))
	}
	if v, ok := ctx.Value(RoomIDKey).(string); ok {
		fs = append(fs, zap.String("room_id", v))
	}
	if v, ok := ctx.Value(PubKeyKey).(string); ok {
		fs = append(fs, zap.String("pubkey", v))
	}
	return fs
}

// Initialize sets up the global logger. development=true selects a
// human-readable colorized encoder; false selects JSON suitable for
// production log aggregation.
func Initialize(development bool) error {
	var err error
	once.Do(func() {
		var cfg zap.Config
		if development {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			cfg = zap.NewProductionConfig()
			cfg.EncoderConfig.TimeKey = "timestamp"
			cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		}
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
		logger, err = cfg.Build(zap.AddCallerSkip(1))
	})
	return err
}

// L returns the global logger, falling back to a development logger if
// Initialize was never called (e.g. library embedders or tests).
func L() *zap.Logger {
	if logger == nil {
		l, _ := zap.NewDevelopment()
		return l
	}
	return logger
}

func fields(ctx context.Context, kv []any) []zap.Field {
	fs := contextFields(ctx)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		fs = append(fs, zap.Any(key, kv[i+1]))
	}
	return fs
}

// Info logs at InfoLevel with alternating key/value pairs, e.g.
// Info(ctx, "joined room", "room_id", id, "pubkey", pk). Fields attached to
// ctx via WithFields are logged alongside the explicit kv pairs.
func Info(ctx context.Context, msg string, kv ...any) {
	L().Info(msg, fields(ctx, kv)...)
}

// Warn logs at WarnLevel.
func Warn(ctx context.Context, msg string, kv ...any) {
	L().Warn(msg, fields(ctx, kv)...)
}

// Error logs at ErrorLevel.
func Error(ctx context.Context, msg string, kv ...any) {
	L().Error(msg, fields(ctx, kv)...)
}

// Debug logs at DebugLevel.
func Debug(ctx context.Context, msg string, kv ...any) {
	L().Debug(msg, fields(ctx, kv)...)
}

// Sync flushes any buffered log entries. Call on shutdown.
func Sync() error {
	return L().Sync()
}
