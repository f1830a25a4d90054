package engine

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// cancelFile is the signal file name a caller drops into the signals
// directory to stop a run in flight.
const cancelFile = "cancel"

// CancelWatcher cancels a run's context when a cancel signal file appears in
// the watched directory. It lets an external process stop a long run without
// killing the engine: in-flight waves finish, later waves never dispatch,
// and session state is left untouched.
type CancelWatcher struct {
	dir     string
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewCancelWatcher watches dir for cancel signals, creating the directory if
// needed. If the fsnotify watcher cannot start, the watcher degrades to
// polling.
func NewCancelWatcher(dir string) (*CancelWatcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	cw := &CancelWatcher{
		dir:  dir,
		done: make(chan struct{}),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// Continue without watcher - polling fallback
		return cw, nil
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return cw, nil
	}
	cw.watcher = watcher

	return cw, nil
}

// Bind derives a cancellable context from ctx that is cancelled when the
// signal file appears. The signal file is consumed so it cannot cancel a
// later run.
func (cw *CancelWatcher) Bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	go cw.watch(ctx, cancel)
	return ctx, cancel
}

func (cw *CancelWatcher) watch(ctx context.Context, cancel context.CancelFunc) {
	signalPath := filepath.Join(cw.dir, cancelFile)

	// The file may predate the watch.
	if cw.consume(signalPath) {
		cancel()
		return
	}

	if cw.watcher == nil {
		cw.poll(ctx, cancel, signalPath)
		return
	}

	for {
		select {
		case <-cw.done:
			return
		case <-ctx.Done():
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) == cancelFile && event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				cw.consume(signalPath)
				cancel()
				return
			}
		case <-cw.watcher.Errors:
			// Ignore errors, keep watching
		}
	}
}

// poll is the fallback when no fsnotify watcher is available.
func (cw *CancelWatcher) poll(ctx context.Context, cancel context.CancelFunc, signalPath string) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-cw.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if cw.consume(signalPath) {
				cancel()
				return
			}
		}
	}
}

// consume removes the signal file, reporting whether it existed.
func (cw *CancelWatcher) consume(signalPath string) bool {
	if _, err := os.Stat(signalPath); err != nil {
		return false
	}
	os.Remove(signalPath)
	return true
}

// Close stops watching. Safe to call once.
func (cw *CancelWatcher) Close() error {
	close(cw.done)
	if cw.watcher != nil {
		return cw.watcher.Close()
	}
	return nil
}
