package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardRejectsConcurrentRun(t *testing.T) {
	var guard Guard
	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error)

	go func() {
		done <- guard.TryRun(context.Background(), func(context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()

	<-entered
	assert.True(t, guard.Running())

	err := guard.TryRun(context.Background(), func(context.Context) error {
		t.Error("second call must not run")
		return nil
	})
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, guard.Running())
}

func TestGuardReleasesAfterError(t *testing.T) {
	var guard Guard
	boom := errors.New("boom")

	err := guard.TryRun(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	calls := 0
	err = guard.TryRun(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}
