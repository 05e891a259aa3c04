package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches files for changes and reports them, debounced per file
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	files    map[string]bool
	debounce time.Duration
	timers   map[string]*time.Timer
	changes  chan string
}

// NewFileWatcher creates a new file watcher
func NewFileWatcher(debounce time.Duration) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &FileWatcher{
		watcher:  w,
		files:    make(map[string]bool),
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
		changes:  make(chan string, 16),
	}, nil
}

// Add starts watching the given files. Local files only; remote urls
// must be filtered out by the caller.
func (fw *FileWatcher) Add(files ...string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for _, file := range files {
		absPath, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", file, err)
		}
		if fw.files[absPath] {
			continue
		}
		if err := fw.watcher.Add(absPath); err != nil {
			return fmt.Errorf("failed to watch %s: %w", absPath, err)
		}
		fw.files[absPath] = true
	}

	return nil
}

// Changes delivers the absolute path of every changed file after the
// debounce interval elapsed without further writes to it
func (fw *FileWatcher) Changes() <-chan string {
	return fw.changes
}

// Run forwards file system events until ctx is done or the watcher closes
func (fw *FileWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			// editors that save via rename produce Create on the new inode
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				fw.schedule(event.Name)
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("watcher error", "component", "watcher", "err", err)
		}
	}
}

func (fw *FileWatcher) schedule(path string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if !fw.files[path] {
		return
	}
	if timer, exists := fw.timers[path]; exists {
		timer.Stop()
	}
	fw.timers[path] = time.AfterFunc(fw.debounce, func() {
		select {
		case fw.changes <- path:
		default:
			// a reload is already pending
		}
	})
}

// Close stops pending timers and the underlying watcher
func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	for _, t := range fw.timers {
		t.Stop()
	}
	fw.timers = make(map[string]*time.Timer)
	fw.mu.Unlock()
	return fw.watcher.Close()
}

// RemoveAll stops watching every file
func (fw *FileWatcher) RemoveAll() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for file := range fw.files {
		if err := fw.watcher.Remove(file); err != nil {
			return err
		}
	}

	fw.files = make(map[string]bool)
	return nil
}
