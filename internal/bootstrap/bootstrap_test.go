package bootstrap

import (
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp_Run(t *testing.T) {
	t.Run("run returns nil", func(t *testing.T) {
		app := New()
		err := app.Run(context.Background(), func(ctx context.Context) error {
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("run returns error without running hooks", func(t *testing.T) {
		app := New()
		hookCalled := false
		app.AddShutdownHook("db", func(ctx context.Context) error {
			hookCalled = true
			return nil
		})

		want := errors.New("listen tcp :5000: bind: address already in use")
		err := app.Run(context.Background(), func(ctx context.Context) error {
			return want
		})
		assert.ErrorIs(t, err, want)
		assert.False(t, hookCalled)
	})

	t.Run("hooks run in LIFO order on context cancel", func(t *testing.T) {
		app := New()
		var mu sync.Mutex
		var order []string
		for _, name := range []string{"db", "cache", "http"} {
			app.AddShutdownHook(name, func(ctx context.Context) error {
				mu.Lock()
				defer mu.Unlock()
				order = append(order, name)
				return nil
			})
		}

		ctx, cancel := context.WithCancel(context.Background())
		err := app.Run(ctx, func(ctx context.Context) error {
			cancel()
			<-ctx.Done()
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"http", "cache", "db"}, order)
	})

	t.Run("hook errors are joined and named", func(t *testing.T) {
		app := New()
		errDB := errors.New("close failed")
		app.AddShutdownHook("db", func(ctx context.Context) error {
			return errDB
		})
		app.AddShutdownHook("http", func(ctx context.Context) error {
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		err := app.Run(ctx, func(ctx context.Context) error {
			cancel()
			<-ctx.Done()
			return nil
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, errDB)
		assert.Contains(t, err.Error(), "db > close failed")
	})

	t.Run("hooks get a context bounded by the shutdown timeout", func(t *testing.T) {
		app := New(WithShutdownTimeout(50 * time.Millisecond))
		var deadline time.Time
		var hasDeadline bool
		app.AddShutdownHook("http", func(ctx context.Context) error {
			deadline, hasDeadline = ctx.Deadline()
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		start := time.Now()
		err := app.Run(ctx, func(ctx context.Context) error {
			cancel()
			<-ctx.Done()
			return nil
		})
		require.NoError(t, err)
		require.True(t, hasDeadline)
		assert.WithinDuration(t, start.Add(50*time.Millisecond), deadline, time.Second)
	})

	t.Run("hook registered from inside run callback", func(t *testing.T) {
		app := New(WithSignals(syscall.SIGUSR1))
		hookCalled := false

		ctx, cancel := context.WithCancel(context.Background())
		err := app.Run(ctx, func(ctx context.Context) error {
			app.AddShutdownHook("late", func(ctx context.Context) error {
				hookCalled = true
				return nil
			})
			cancel()
			<-ctx.Done()
			return nil
		})
		require.NoError(t, err)
		assert.True(t, hookCalled)
	})
}
