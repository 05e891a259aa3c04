package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsDebouncedChange(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "tour.json")
	require.NoError(t, os.WriteFile(file, []byte("[]"), 0o644))

	fw, err := NewFileWatcher(20 * time.Millisecond)
	require.NoError(t, err)
	defer fw.Close()
	require.NoError(t, fw.Add(file))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fw.Run(ctx)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(file, []byte("[ ]"), 0o644))
	}

	abs, _ := filepath.Abs(file)
	select {
	case changed := <-fw.Changes():
		assert.Equal(t, abs, changed)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcherAddMissingFile(t *testing.T) {
	fw, err := NewFileWatcher(time.Millisecond)
	require.NoError(t, err)
	defer fw.Close()
	assert.Error(t, fw.Add(filepath.Join(t.TempDir(), "missing.json")))
}
