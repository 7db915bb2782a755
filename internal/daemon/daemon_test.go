package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaemon_OnceMode(t *testing.T) {
	source, replica := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(source, "a.txt"), []byte("hello"), 0o644))

	logFile := filepath.Join(t.TempDir(), "sync_log.txt")
	cfg := &Config{
		Source:   source,
		Replica:  replica,
		LogFile:  logFile,
		Interval: DefaultInterval,
		Once:     true,
	}
	require.NoError(t, cfg.Validate())

	d, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, d.Start(context.Background()))

	data, err := os.ReadFile(filepath.Join(replica, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	log, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(log), "Created file:")
}

func TestDaemon_DetachedLoopStopsOnCancel(t *testing.T) {
	source, replica := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(source, "a.txt"), []byte("hello"), 0o644))

	cfg := &Config{
		Source:   source,
		Replica:  replica,
		LogFile:  filepath.Join(t.TempDir(), "sync_log.txt"),
		Interval: time.Hour,
		Detach:   true,
	}
	require.NoError(t, cfg.Validate())

	d, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Start(ctx) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(replica, "a.txt"))
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop on cancel")
	}
}

func TestDaemon_MissingExcludeFileFails(t *testing.T) {
	cfg := &Config{
		Source:      t.TempDir(),
		Replica:     t.TempDir(),
		LogFile:     filepath.Join(t.TempDir(), "sync_log.txt"),
		Interval:    DefaultInterval,
		ExcludeFile: filepath.Join(t.TempDir(), "no-such-ignore"),
	}
	require.NoError(t, cfg.Validate())

	_, err := New(cfg)
	assert.Error(t, err)
}
