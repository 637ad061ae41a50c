package templates

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
)

// Library enumerates reference images in a directory and decodes them on demand.
//
// When caching is enabled decoded images are kept in memory keyed by path until
// Evict, Clear or a watched file change removes them. Library is safe for
// concurrent use.
type Library struct {
	dir     string
	pattern string
	caching bool
	logger  *slog.Logger

	mu     sync.RWMutex
	images map[string]image.Image
}

// NewLibrary returns a library over dir/pattern, e.g. "templates" and "*.png".
func NewLibrary(dir, pattern string, caching bool, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Library{dir: dir, pattern: pattern, caching: caching, logger: logger, images: make(map[string]image.Image)}
}

// Dir returns the watched directory.
func (l *Library) Dir() string { return l.dir }

// Paths returns the matching files in lexical order. A missing directory yields
// an empty set.
func (l *Library) Paths() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(l.dir, l.pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", l.pattern, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Load decodes the image at path, from the cache when possible.
func (l *Library) Load(path string) (image.Image, error) {
	if l.caching {
		l.mu.RLock()
		img, ok := l.images[path]
		l.mu.RUnlock()
		if ok {
			return img, nil
		}
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", filepath.Base(path), err)
	}
	if l.caching {
		l.mu.Lock()
		l.images[path] = img
		l.mu.Unlock()
	}
	return img, nil
}

// Cached reports whether path is held in the cache.
func (l *Library) Cached(path string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.images[path]
	return ok
}

// Evict removes path from the cache.
func (l *Library) Evict(path string) {
	l.mu.Lock()
	delete(l.images, path)
	l.mu.Unlock()
}

// Clear drops every cached image.
func (l *Library) Clear() {
	l.mu.Lock()
	l.images = make(map[string]image.Image)
	l.mu.Unlock()
}

// Watch evicts cached images whose files change until ctx is done. ready, when
// non-nil, is closed once the watcher is registered.
func (l *Library) Watch(ctx context.Context, ready chan<- struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("template watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(l.dir); err != nil {
		return fmt.Errorf("template watcher: watch %s: %w", l.dir, err)
	}
	if ready != nil {
		close(ready)
	}
	l.logger.Debug("templates.watch", "dir", l.dir)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if match, _ := filepath.Match(l.pattern, filepath.Base(event.Name)); !match {
				continue
			}
			// Paths are cached in the form Glob returns, which joins dir and name.
			l.Evict(filepath.Join(l.dir, filepath.Base(event.Name)))
			l.logger.Debug("templates.changed", "path", event.Name, "op", event.Op.String())

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Warn("templates.watch_error", "error", err)
		}
	}
}
