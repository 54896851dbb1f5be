package descriptor

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_DetectsChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("services: []\n"), 0644))

	var fired atomic.Int32
	w := NewWatcher(WatcherConfig{
		Path:         path,
		PollInterval: 50 * time.Millisecond,
		OnChange:     func() { fired.Add(1) },
	})
	require.NoError(t, w.Start())
	defer w.Stop()

	// Give the watcher a moment to establish the watch before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("services: [changed]\n"), 0644))

	assert.Eventually(t, func() bool {
		return fired.Load() >= 1
	}, 3*time.Second, 50*time.Millisecond, "expected OnChange to fire after file write")
}

func TestWatcher_StartIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("services: []\n"), 0644))

	w := NewWatcher(WatcherConfig{Path: path})
	require.NoError(t, w.Start())
	require.NoError(t, w.Start())
	assert.NoError(t, w.Stop())
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	w := NewWatcher(WatcherConfig{Path: "/nonexistent/stack.yaml"})
	assert.NoError(t, w.Stop())
}
