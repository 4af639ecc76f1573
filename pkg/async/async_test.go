package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentora/dentkit/pkg/async"
)

func TestTask_Await(t *testing.T) {
	t.Parallel()

	t.Run("returns result", func(t *testing.T) {
		t.Parallel()

		task := async.Run(context.Background(), func(ctx context.Context) (int, error) {
			return 42, nil
		})

		v, err := task.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	})

	t.Run("returns computation error", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("boom")
		task := async.Run(context.Background(), func(ctx context.Context) (int, error) {
			return 0, wantErr
		})

		_, err := task.Await(context.Background())
		assert.ErrorIs(t, err, wantErr)
	})

	t.Run("respects caller cancellation", func(t *testing.T) {
		t.Parallel()

		task := async.Run(context.Background(), func(ctx context.Context) (int, error) {
			time.Sleep(time.Second)
			return 1, nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := task.Await(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("pre-cancelled context aborts early", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		task := async.Run(ctx, func(ctx context.Context) (int, error) {
			t.Error("computation should not run")
			return 0, nil
		})

		_, err := task.Await(context.Background())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestTask_AwaitTimeout(t *testing.T) {
	t.Parallel()

	t.Run("fast task beats the deadline", func(t *testing.T) {
		t.Parallel()

		task := async.Run(context.Background(), func(ctx context.Context) (string, error) {
			return "ok", nil
		})

		v, err := task.AwaitTimeout(time.Second)
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
	})

	t.Run("deadline wins against a slow task", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		task := async.Run(context.Background(), func(ctx context.Context) (string, error) {
			<-release
			return "late", nil
		})

		_, err := task.AwaitTimeout(20 * time.Millisecond)
		assert.ErrorIs(t, err, async.ErrTimeout)

		// The abandoned task still completes on its own.
		close(release)
		v, err := task.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "late", v)
	})
}

func TestTask_Done(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	task := async.Run(context.Background(), func(ctx context.Context) (int, error) {
		<-release
		return 1, nil
	})

	assert.False(t, task.Done())
	close(release)

	_, err := task.Await(context.Background())
	require.NoError(t, err)
	assert.True(t, task.Done())
}
