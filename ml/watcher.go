package ml

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Reloader loads a model directory and publishes it to a registry.
type Reloader struct {
	Dir      string
	Format   string
	Registry *Registry
	Logger   *zap.Logger
	// OnSwap, if set, runs after each successful publish.
	OnSwap func(snap *Snapshot)
}

// Reload loads the directory and swaps the result in. On failure the
// registry keeps its current snapshot.
func (r *Reloader) Reload() (*Snapshot, error) {
	m, err := LoadModel(r.Format, r.Dir)
	if err != nil {
		r.logger().Warn("model reload failed, keeping current model",
			zap.String("dir", r.Dir), zap.String("format", r.Format), zap.Error(err))
		return nil, fmt.Errorf("load model dir %s: %w", r.Dir, err)
	}
	snap := r.Registry.Swap(m)
	r.logger().Info("model published",
		zap.Uint64("version", snap.Version),
		zap.Int("classes", m.ClassCount()),
		zap.Int("features", m.FeatureCount()),
		zap.Strings("labels", m.Labels()))
	if r.OnSwap != nil {
		r.OnSwap(snap)
	}
	return snap, nil
}

func (r *Reloader) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// Watcher reloads the model whenever one of its artifact files changes.
type Watcher struct {
	reloader *Reloader
	debounce time.Duration
	fsw      *fsnotify.Watcher
	files    map[string]bool
}

// NewWatcher starts watching the reloader's directory. Bursts of events
// within debounce trigger a single reload.
func NewWatcher(reloader *Reloader, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(reloader.Dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", reloader.Dir, err)
	}
	files := make(map[string]bool)
	for _, name := range ArtifactFiles(reloader.Format) {
		files[name] = true
	}
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	return &Watcher{reloader: reloader, debounce: debounce, fsw: fsw, files: files}, nil
}

// Run processes file events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fsw.Close()
	log := w.reloader.logger()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.files[filepath.Base(ev.Name)] {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			log.Debug("model artifact changed", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
			resetTimer(timer, w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Error("model watcher error", zap.Error(err))
		case <-timer.C:
			// errors are logged by Reload
			_, _ = w.reloader.Reload()
		}
	}
}

// resetTimer restarts t, discarding a tick that fired but was never
// received so it cannot trigger a second reload.
func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
