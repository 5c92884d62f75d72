// Package spawn manages the lifetime of the background goroutines an Arena
// runs per room: heartbeat emission, presence reconciliation, countdown
// ticking, and the inbound subscription dispatcher. It is the Go analog of
// the original crate's spawn.rs/time.rs cross-target shims, simplified to a
// single native target (Go has no WASM-vs-native split to manage), and
// follows the teacher's Room.Shutdown pattern: a shared context.CancelFunc
// plus a sync.WaitGroup so Stop blocks until every goroutine has exited.
package spawn

import (
	"context"
	"sync"
)

// Group tracks a set of goroutines sharing one cancellation context.
type Group struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewGroup derives a cancellable context from parent and returns a Group
// ready to spawn goroutines on it.
func NewGroup(parent context.Context) *Group {
	ctx, cancel := context.WithCancel(parent)
	return &Group{ctx: ctx, cancel: cancel}
}

// Context returns the Group's context; goroutines spawned via Go should
// select on Context().Done() to exit promptly on Stop.
func (g *Group) Context() context.Context {
	return g.ctx
}

// Go runs fn in a new goroutine tracked by the group's WaitGroup.
func (g *Group) Go(fn func(ctx context.Context)) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		fn(g.ctx)
	}()
}

// Stop cancels the group's context and blocks until every spawned goroutine
// has returned.
func (g *Group) Stop() {
	g.cancel()
	g.wg.Wait()
}
