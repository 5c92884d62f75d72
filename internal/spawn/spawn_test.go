package spawn

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGroupStopWaitsForGoroutines(t *testing.T) {
	g := NewGroup(context.Background())

	var exited int32
	g.Go(func(ctx context.Context) {
		<-ctx.Done()
		time.Sleep(5 * time.Millisecond)
		atomic.StoreInt32(&exited, 1)
	})

	g.Stop()
	assert.EqualValues(t, 1, atomic.LoadInt32(&exited))
}

func TestGroupContextCancelledOnStop(t *testing.T) {
	g := NewGroup(context.Background())
	ctx := g.Context()

	g.Stop()

	select {
	case <-ctx.Done():
	default:
		t.Fatal("expected context to be cancelled after Stop")
	}
}

func TestGroupRunsMultipleGoroutines(t *testing.T) {
	g := NewGroup(context.Background())

	var count int32
	for i := 0; i < 5; i++ {
		g.Go(func(ctx context.Context) {
			atomic.AddInt32(&count, 1)
			<-ctx.Done()
		})
	}
	g.Stop()
	assert.EqualValues(t, 5, atomic.LoadInt32(&count))
}
