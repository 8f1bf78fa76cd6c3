package audio

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// SoundWatcher follows the files behind the named sound table and reports
// every named sound whose file is rewritten.
type SoundWatcher struct {
	logger   *slog.Logger
	onChange func(name, path string)

	mu     sync.Mutex
	byPath map[string]string // cleaned path -> sound name
	fsw    *fsnotify.Watcher
	dirs   map[string]bool
	done   chan struct{}
}

// NewSoundWatcher creates a watcher that calls onChange from its own
// goroutine.
func NewSoundWatcher(onChange func(name, path string), logger *slog.Logger) *SoundWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &SoundWatcher{
		logger:   logger,
		onChange: onChange,
		byPath:   make(map[string]string),
	}
}

// SetSounds replaces the watched table. Sounds with no file are skipped.
func (w *SoundWatcher) SetSounds(sounds map[string]string) {
	byPath := make(map[string]string, len(sounds))
	for name, path := range sounds {
		if path != "" {
			byPath[filepath.Clean(path)] = name
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.byPath = byPath
	if w.fsw != nil {
		w.syncDirs()
	}
}

// syncDirs watches the directory of every sound file and drops the rest.
// Directories rather than files, so replace-by-rename is seen. Caller holds mu.
func (w *SoundWatcher) syncDirs() {
	want := make(map[string]bool)
	for path := range w.byPath {
		want[filepath.Dir(path)] = true
	}
	for dir := range w.dirs {
		if !want[dir] {
			_ = w.fsw.Remove(dir)
			delete(w.dirs, dir)
		}
	}
	for dir := range want {
		if w.dirs[dir] {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			w.logger.Warn("sound directory not watched", "reason", "soundWatchFailed", "dir", dir, "error", err)
			continue
		}
		w.dirs[dir] = true
	}
}

// Start begins watching. A second Start is a no-op.
func (w *SoundWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fsw != nil {
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create sound watcher: %w", err)
	}
	w.fsw = fsw
	w.dirs = make(map[string]bool)
	w.syncDirs()

	done := make(chan struct{})
	w.done = done
	go w.watch(ctx, fsw, done)

	w.logger.Debug("sound watcher started", "sounds", len(w.byPath), "dirs", len(w.dirs))
	return nil
}

func (w *SoundWatcher) watch(ctx context.Context, fsw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			path := filepath.Clean(event.Name)
			w.mu.Lock()
			name, watched := w.byPath[path]
			w.mu.Unlock()
			if !watched {
				continue
			}
			w.logger.Debug("sound changed", "sound", name, "path", path)
			if w.onChange != nil {
				w.onChange(name, path)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("sound watcher error", "error", err)
		}
	}
}

// Stop ends watching and waits for the loop to exit. Safe to call twice.
func (w *SoundWatcher) Stop() {
	w.mu.Lock()
	fsw, done := w.fsw, w.done
	w.fsw, w.done, w.dirs = nil, nil, nil
	w.mu.Unlock()

	if fsw == nil {
		return
	}
	_ = fsw.Close()
	<-done
	w.logger.Debug("sound watcher stopped")
}

// Running reports whether the watcher is active.
func (w *SoundWatcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fsw != nil
}
