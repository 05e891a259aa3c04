// Package imagecache stores panorama images so that revisiting a viewpoint
// does not download them again. Entries live in a hackpadfs filesystem:
// the host disk on desktop, IndexedDB in the browser, memory in tests.
package imagecache

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/hack-pad/hackpadfs"
)

// FormatVersion is recorded in the store; a store written with a different
// version is cleared on Open.
const FormatVersion = "1"

// ErrClosed is returned by operations on a closed cache
var ErrClosed = errors.New("image cache closed")

// Options configures Open
type Options struct {
	// Dir is the store location. Empty selects the user cache directory.
	Dir string
	// FS overrides the storage engine; Dir is then a path inside FS
	FS hackpadfs.FS
	// Disabled turns the cache into a pass-through to the fetcher
	Disabled bool
	Fetcher  Fetcher
}

// Cache is safe for concurrent use. Gets of the same URL are serialized.
type Cache struct {
	fetcher Fetcher
	store   *store

	mu       sync.Mutex
	closed   bool
	keys     map[string]*keyLock
	inflight sync.WaitGroup
	// per-key operations hold gate for reading, Clear for writing
	gate sync.RWMutex
}

type keyLock struct {
	sync.Mutex
	refs int
}

// Open prepares the store and runs the format version check
func Open(ctx context.Context, opts Options) (*Cache, error) {
	c := &Cache{
		fetcher: opts.Fetcher,
		keys:    map[string]*keyLock{},
	}
	if c.fetcher == nil {
		c.fetcher = DefaultFetcher{}
	}
	if opts.Disabled {
		return c, nil
	}

	fs, root := opts.FS, opts.Dir
	if fs == nil {
		var err error
		fs, root, err = openFS(ctx, opts.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open image store: %w", err)
		}
	}
	st, err := newStore(fs, root)
	if err != nil {
		return nil, fmt.Errorf("failed to open image store: %w", err)
	}
	cleared, err := st.checkVersion(FormatVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to check image store version: %w", err)
	}
	if cleared {
		slog.Info("image store initialised", "component", "imagecache", "version", FormatVersion)
	}
	c.store = st
	return c, nil
}

// Enabled reports whether images are persisted
func (c *Cache) Enabled() bool { return c.store != nil }

// Get returns the decoded image for url. A miss fetches the image and
// stores it; a failed write is logged and the image is still returned.
func (c *Cache) Get(ctx context.Context, url string) (image.Image, error) {
	data, err := c.Bytes(ctx, url)
	if err != nil {
		return nil, err
	}
	return Decode(url, data)
}

// Bytes returns the raw encoded image for url
func (c *Cache) Bytes(ctx context.Context, url string) ([]byte, error) {
	unlock, err := c.lock(url)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if c.store != nil {
		data, err := c.store.read(url)
		if err != nil {
			slog.Warn("failed to read cached image", "component", "imagecache", "url", url, "err", err)
		}
		if len(data) > 0 {
			return data, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if c.store != nil {
		if err := c.store.write(url, data); err != nil {
			slog.Warn("failed to store image", "component", "imagecache", "url", url, "err", err)
		}
	}
	return data, nil
}

// Contains reports whether url is stored
func (c *Cache) Contains(url string) bool {
	if c.store == nil {
		return false
	}
	data, err := c.store.read(url)
	return err == nil && data != nil
}

// Remove deletes the entry for url. Removing a missing entry succeeds.
func (c *Cache) Remove(_ context.Context, url string) error {
	unlock, err := c.lock(url)
	if err != nil {
		return err
	}
	defer unlock()
	if c.store == nil {
		return nil
	}
	return c.store.remove(url)
}

// Clear deletes every entry. It waits for running gets and removes, and
// operations started meanwhile wait for it.
func (c *Cache) Clear(_ context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.inflight.Add(1)
	c.mu.Unlock()
	defer c.inflight.Done()

	if c.store == nil {
		return nil
	}
	c.gate.Lock()
	defer c.gate.Unlock()
	if err := c.store.clear(); err != nil {
		return err
	}
	_, err := c.store.checkVersion(FormatVersion)
	return err
}

// Len returns the number of stored images
func (c *Cache) Len() int {
	if c.store == nil {
		return 0
	}
	n, err := c.store.count()
	if err != nil {
		slog.Warn("failed to list image store", "component", "imagecache", "err", err)
	}
	return n
}

// Close rejects new operations and waits for running ones
func (c *Cache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	c.inflight.Wait()
	return nil
}

func (c *Cache) lock(url string) (func(), error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	k, ok := c.keys[url]
	if !ok {
		k = &keyLock{}
		c.keys[url] = k
	}
	k.refs++
	c.inflight.Add(1)
	c.mu.Unlock()

	c.gate.RLock()
	k.Lock()
	return func() {
		k.Unlock()
		c.gate.RUnlock()
		c.mu.Lock()
		k.refs--
		if k.refs == 0 {
			delete(c.keys, url)
		}
		c.mu.Unlock()
		c.inflight.Done()
	}, nil
}
