package config

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestWatcherReloadsOnEdit(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "admitguard.yaml")

	cfg := DefaultConfig()
	require.NoError(t, cfg.Save(path))

	var reloaded atomic.Pointer[Config]
	w, err := NewWatcher(path, zap.NewNop(), func(c *Config) {
		reloaded.Store(c)
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	cfg.Rules.MinPercentage = 70.0
	require.NoError(t, cfg.Save(path))

	require.Eventually(t, func() bool {
		c := reloaded.Load()
		return c != nil && c.Rules.MinPercentage == 70.0
	}, 5*time.Second, 50*time.Millisecond, "watcher never delivered the edited config")
}

func TestWatcherIgnoresInvalidEdit(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "admitguard.yaml")

	cfg := DefaultConfig()
	require.NoError(t, cfg.Save(path))

	var calls atomic.Int32
	w, err := NewWatcher(path, zap.NewNop(), func(*Config) {
		calls.Add(1)
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	// Negative buffer fails validation; the callback must not fire.
	bad := DefaultConfig()
	bad.Rules.ExceptionBufferPct = -5.0
	require.NoError(t, bad.Save(path))

	time.Sleep(time.Second)
	require.Zero(t, calls.Load(), "invalid config should not be delivered")
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "admitguard.yaml")
	require.NoError(t, DefaultConfig().Save(path))

	w, err := NewWatcher(path, zap.NewNop(), func(*Config) {})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	w.Stop()
	w.Stop()
}
