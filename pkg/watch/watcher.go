// Package watch reloads file-backed tables when their source files
// change. The suppression snapshot, the jurisdiction table and the rule
// order file are plain YAML maintained outside the process, so a
// watcher plus a reload callback keeps the serving copies current
// without restarts.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Config contains configuration for the file watcher.
type Config struct {
	// Path is the file or directory to watch.
	Path string

	// DebounceInterval is the quiet period required after a change
	// before the reload fires (default: 200ms). Editors and config
	// management tools produce bursts of events per save.
	DebounceInterval time.Duration

	// Extensions is the list of file extensions to react to. Empty
	// means every extension.
	Extensions []string

	// SkipHidden controls whether hidden files are ignored.
	SkipHidden bool
}

// DefaultConfig returns the default watcher configuration.
func DefaultConfig() *Config {
	return &Config{
		DebounceInterval: 200 * time.Millisecond,
		Extensions:       []string{".yaml", ".yml"},
		SkipHidden:       true,
	}
}

// FileWatcher watches a file or directory and triggers a reload
// callback after changes settle. A single-file target is watched
// through its parent directory with events filtered by base name, so
// atomic replaces (write to temp file, rename over target) are still
// observed.
type FileWatcher struct {
	fsw      *fsnotify.Watcher
	logger   *slog.Logger
	config   *Config
	debounce *debouncer

	// target is the base name filter for a single-file watch, empty
	// when watching a directory tree.
	target string

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

// NewFileWatcher creates a new file watcher.
func NewFileWatcher(config *Config, logger *slog.Logger) (*FileWatcher, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Path == "" {
		return nil, fmt.Errorf("watch path cannot be empty")
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = 200 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		fsw:      fsw,
		logger:   logger.With("component", "watch"),
		config:   config,
		debounce: newDebouncer(config.DebounceInterval),
	}, nil
}

// Watch registers the target and invokes onReload after each settled
// burst of events. It blocks until the context is cancelled or Stop is
// called. Reload errors are logged, not fatal: the previous table keeps
// serving.
func (fw *FileWatcher) Watch(ctx context.Context, onReload func() error) error {
	fw.mu.Lock()
	if fw.cancel != nil {
		fw.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	fw.cancel = cancel
	fw.done = done
	fw.mu.Unlock()

	defer func() {
		cancel()
		close(done)
		fw.mu.Lock()
		fw.cancel = nil
		fw.mu.Unlock()
	}()

	if err := fw.register(); err != nil {
		return fmt.Errorf("failed to watch path: %w", err)
	}

	fw.logger.Info("file watcher started",
		"path", fw.config.Path,
		"debounce_ms", fw.config.DebounceInterval.Milliseconds(),
	)

	return fw.run(ctx, onReload)
}

func (fw *FileWatcher) run(ctx context.Context, onReload func() error) error {
	for {
		select {
		case <-ctx.Done():
			fw.logger.Info("file watcher stopped")
			return nil

		case event, ok := <-fw.fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			fw.handleEvent(event, onReload)

		case err, ok := <-fw.fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			fw.logger.Error("file watcher error", "error", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event, onReload func() error) {
	if !fw.relevant(event) {
		return
	}

	fw.logger.Debug("file event detected",
		"path", event.Name,
		"op", event.Op.String(),
	)

	fw.debounce.trigger(func() {
		fw.logger.Info("change settled, reloading", "path", event.Name)
		if err := onReload(); err != nil {
			fw.logger.Error("reload failed, keeping previous table", "error", err)
		}
	})
}

// Stop stops the file watcher and waits for the watch loop to exit.
// It is safe to call on a watcher that never started.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	cancel, done := fw.cancel, fw.done
	alreadyClosed := fw.closed
	fw.closed = true
	fw.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	fw.debounce.stop()

	if alreadyClosed {
		return nil
	}
	if err := fw.fsw.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// register adds the configured path to the fsnotify watch set. A
// directory target is walked so subdirectories are covered too.
func (fw *FileWatcher) register() error {
	info, err := os.Stat(fw.config.Path)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		fw.target = filepath.Base(fw.config.Path)
		return fw.fsw.Add(filepath.Dir(fw.config.Path))
	}

	return filepath.WalkDir(fw.config.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if fw.config.SkipHidden && path != fw.config.Path && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fw.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", path, err)
		}
		fw.logger.Debug("watching directory", "path", path)
		return nil
	})
}

// relevant reports whether an event should feed the debouncer.
func (fw *FileWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}

	base := filepath.Base(event.Name)
	if fw.target != "" {
		if base != fw.target {
			return false
		}
	} else if fw.config.SkipHidden && strings.HasPrefix(base, ".") {
		return false
	}

	return fw.matchesExtension(event.Name)
}

func (fw *FileWatcher) matchesExtension(name string) bool {
	if len(fw.config.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range fw.config.Extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

// debouncer collapses rapid event bursts and fires the most recent
// callback only after a quiet period with no new triggers.
type debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	timer    *time.Timer
	pending  func()
	stopped  bool
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval}
}

// trigger arms the debounce timer. Each call replaces the pending
// callback and restarts the quiet period.
func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending = callback

	if d.timer == nil {
		d.timer = time.AfterFunc(d.interval, d.fire)
		return
	}
	d.timer.Reset(d.interval)
}

func (d *debouncer) fire() {
	d.mu.Lock()
	callback := d.pending
	d.pending = nil
	stopped := d.stopped
	d.mu.Unlock()

	if callback != nil && !stopped {
		callback()
	}
}

// stop cancels any pending callback and rejects further triggers.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
	}
}
