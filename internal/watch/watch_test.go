package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelparity/modelparity/internal/testutil"
)

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err, "empty dir list must be rejected")

	_, err = New(Options{Dirs: []string{filepath.Join(t.TempDir(), "missing")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot watch")

	file := filepath.Join(t.TempDir(), "model.sql")
	require.NoError(t, os.WriteFile(file, []byte("select 1"), 0644))
	_, err = New(Options{Dirs: []string{file}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

// startWatcher runs a watcher in the background and returns a counter of
// callback invocations plus a stop function that waits for Run to exit.
func startWatcher(t *testing.T, dir string) (*atomic.Int64, func() error) {
	t.Helper()

	w, err := New(Options{
		Dirs:     []string{dir},
		Debounce: 50 * time.Millisecond,
		Logger:   testutil.NewTestLogger(t),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var fires atomic.Int64
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() { fires.Add(1) })
	}()

	// Give the watcher time to register the directories.
	time.Sleep(100 * time.Millisecond)

	return &fires, func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(2 * time.Second):
			t.Fatal("watcher did not stop after cancel")
			return nil
		}
	}
}

func waitForFires(t *testing.T, fires *atomic.Int64, want int64) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if fires.Load() >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected at least %d change callbacks, got %d", want, fires.Load())
}

func TestWatcher_FiresOnModelChange(t *testing.T) {
	dir := t.TempDir()
	fires, stop := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "accounts.sql"), []byte("select 1"), 0644))
	waitForFires(t, fires, 1)

	assert.NoError(t, stop())
}

func TestWatcher_IgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	fires, stop := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int64(0), fires.Load(), "non-model files must not trigger")

	assert.NoError(t, stop())
}

func TestWatcher_CollapsesBursts(t *testing.T) {
	dir := t.TempDir()
	fires, stop := startWatcher(t, dir)

	for i := 0; i < 5; i++ {
		name := filepath.Join(dir, "model"+string(rune('a'+i))+".sql")
		require.NoError(t, os.WriteFile(name, []byte("select 1"), 0644))
	}
	waitForFires(t, fires, 1)
	time.Sleep(300 * time.Millisecond)

	got := fires.Load()
	assert.Less(t, got, int64(5), "burst of writes should collapse, got %d callbacks", got)

	assert.NoError(t, stop())
}

func TestWatcher_PicksUpNewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	fires, stop := startWatcher(t, dir)

	sub := filepath.Join(dir, "finance")
	require.NoError(t, os.Mkdir(sub, 0755))
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "loans.sql"), []byte("select 1"), 0644))
	waitForFires(t, fires, 1)

	assert.NoError(t, stop())
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	_, stop := startWatcher(t, dir)
	assert.NoError(t, stop())
}
