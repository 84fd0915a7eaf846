package tasks

import (
	"context"
	"errors"
	"sync/atomic"
)

var ErrAlreadyRunning = errors.New("fetch already running")

// Guard rejects a call while a previous one is still in flight. Rejected
// calls are not queued.
type Guard struct {
	running atomic.Bool
}

func (g *Guard) TryRun(ctx context.Context, fn func(context.Context) error) error {
	if !g.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer g.running.Store(false)

	return fn(ctx)
}

func (g *Guard) Running() bool {
	return g.running.Load()
}
