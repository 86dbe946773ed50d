package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, w *Watcher) (<-chan struct{}, *atomic.Int32) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	calls := &atomic.Int32{}
	fired := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) error {
			calls.Add(1)
			fired <- struct{}{}
			return nil
		})
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("watcher did not stop")
		}
	})

	// let the watcher register before the test writes files
	time.Sleep(100 * time.Millisecond)
	return fired, calls
}

func TestRebuildOnChange(t *testing.T) {
	dir := t.TempDir()
	w := New(nil, dir)
	w.Debounce = 50 * time.Millisecond
	fired, _ := startWatcher(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene_01_a.legos"), []byte("1 4\n"), 0644))

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("no rebuild after change")
	}
}

func TestBurstIsDebounced(t *testing.T) {
	dir := t.TempDir()
	w := New(nil, dir)
	w.Debounce = 200 * time.Millisecond
	fired, calls := startWatcher(t, w)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "page.png"), []byte{byte(i)}, 0644))
	}

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("no rebuild after burst")
	}
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestMatchFiltersEvents(t *testing.T) {
	dir := t.TempDir()
	w := New(nil, dir)
	w.Debounce = 50 * time.Millisecond
	w.Match = func(p string) bool { return strings.HasSuffix(p, ".legos") }
	fired, _ := startWatcher(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.legos"), []byte("x"), 0644))

	select {
	case <-fired:
		t.Fatal("rebuild for an unmatched file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchSingleFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "deck.pdf")
	require.NoError(t, os.WriteFile(target, []byte("%PDF"), 0644))

	w := New(nil, target)
	w.Debounce = 50 * time.Millisecond
	fired, _ := startWatcher(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.pdf"), []byte("x"), 0644))
	select {
	case <-fired:
		t.Fatal("rebuild for a sibling file")
	case <-time.After(300 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(target, []byte("%PDF-1.7"), 0644))
	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("no rebuild after the watched file changed")
	}
}

func TestNothingToWatch(t *testing.T) {
	w := New(nil, filepath.Join(t.TempDir(), "missing"))
	err := w.Run(context.Background(), func(context.Context) error { return nil })
	assert.Error(t, err)
}
