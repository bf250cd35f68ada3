// Package watch reloads a room package whenever its files change on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/roomtex/pkg/room"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 500 * time.Millisecond

// Options controls a Watcher.
type Options struct {
	// Debounce is how long the package must stay quiet before it is
	// reloaded. A capture writes several files in a burst.
	Debounce time.Duration

	Read *room.ReadOptions

	// Logger defaults to a no-op logger.
	Logger *zap.Logger

	// OnReload receives every load attempt, including the initial one.
	// It is called from the goroutine running Run.
	OnReload func(*room.Package, error)
}

// Watcher reloads the room package in one directory.
type Watcher struct {
	dir  string
	opts Options
	log  *zap.Logger
	fsw  *fsnotify.Watcher
}

// New starts watching dir. The directory must exist.
func New(dir string, opts Options) (*Watcher, error) {
	if opts.Debounce == 0 {
		opts.Debounce = DefaultDebounce
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	return &Watcher{
		dir:  dir,
		opts: opts,
		log:  log.With(zap.String("dir", dir)),
		fsw:  fsw,
	}, nil
}

// Run loads the package once, then reloads it after each burst of changes
// to package files until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	w.reload()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("package changed",
				zap.String("file", filepath.Base(event.Name)),
				zap.Stringer("op", event.Op))
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
				fire = timer.C
			} else {
				timer.Reset(w.opts.Debounce)
			}

		case <-fire:
			w.reload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// Close stops watching. A running Run returns.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return room.IsPackageFile(filepath.Base(event.Name))
}

func (w *Watcher) reload() {
	start := time.Now()
	pkg, err := room.ReadDir(w.dir, w.opts.Read)
	if err != nil {
		w.log.Warn("reload failed", zap.Error(err))
	} else {
		w.log.Info("package loaded",
			zap.Int("submeshes", len(pkg.Mesh.SubMeshes)),
			zap.Int("layers", len(pkg.Layers)),
			zap.Duration("took", time.Since(start)))
	}
	if w.opts.OnReload != nil {
		w.opts.OnReload(pkg, err)
	}
}
