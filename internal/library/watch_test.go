package library

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_RescansOnChanges(t *testing.T) {
	dir := t.TempDir()
	lib := openTestLibrary(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchErr := make(chan error, 1)
	go func() { watchErr <- lib.Watch(ctx, dir) }()

	// Give the watcher a moment to register before touching the dir.
	time.Sleep(100 * time.Millisecond)

	count := func() int {
		entries, err := lib.List()
		require.NoError(t, err)
		return len(entries)
	}

	path := writeImage(t, dir, "late.z64", "LATE ARRIVAL")
	require.Eventually(t, func() bool { return count() == 1 },
		5*time.Second, 50*time.Millisecond, "new image never cataloged")

	require.NoError(t, os.Remove(path))
	require.Eventually(t, func() bool { return count() == 0 },
		5*time.Second, 50*time.Millisecond, "removed image never pruned")

	cancel()
	select {
	case err := <-watchErr:
		assert.True(t, errors.Is(err, context.Canceled), "Watch returned %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_MissingDir(t *testing.T) {
	lib := openTestLibrary(t)
	err := lib.Watch(context.Background(), "/nonexistent/roms")
	assert.Error(t, err)
}
