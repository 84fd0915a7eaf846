package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const DefaultInterval = 5 * time.Minute

type TaskSchedulerInterface interface {
	Start(ctx context.Context)
	Stop()
}

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// IngestionRunner is the unit of work the scheduler triggers.
type IngestionRunner interface {
	RunOnce(ctx context.Context) (Status, error)
}

// Scheduler triggers a run at startup and then on every tick. Each run gets
// its own goroutine, so a slow run never delays the next tick and runs may
// overlap.
type Scheduler struct {
	runner   IngestionRunner
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	once     sync.Once
}

func NewScheduler(runner IngestionRunner, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Scheduler{
		runner:   runner,
		interval: interval,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.once.Do(func() {
		s.ctx, s.cancel = context.WithCancel(ctx)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()

			ticker := time.NewTicker(s.interval)
			defer ticker.Stop()

			s.trigger()

			for {
				select {
				case <-s.ctx.Done():
					return
				case <-ticker.C:
					s.trigger()
				}
			}
		}()

		slog.Info("Scheduler started", "interval", s.interval)
	})
}

// Stop cancels in-flight runs and waits for them to return.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) trigger() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if _, err := s.runner.RunOnce(s.ctx); err != nil {
			slog.Warn("Scheduled run failed", "error", err)
		}
	}()
}
