// Package watcher turns writes to the shared local store made by other
// processes into focus checks, for processes that have no window to regain
// focus.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	ierr "github.com/hiretrack/hiretrack/internal/errors"
	"github.com/hiretrack/hiretrack/internal/logger"
)

const defaultDebounce = 500 * time.Millisecond

// FocusFunc is invoked once per burst of store writes
type FocusFunc func(ctx context.Context) (bool, error)

// StoreWatcher watches the store file and its journal files
type StoreWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange FocusFunc
	logger   *logger.Logger

	mu             sync.Mutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewStoreWatcher watches the directory holding storePath. The directory is
// watched rather than the file so that -wal/-shm writes and atomic replaces
// are seen too.
func NewStoreWatcher(storePath string, debounce time.Duration, onChange FocusFunc, log *logger.Logger) (*StoreWatcher, error) {
	if storePath == "" {
		return nil, ierr.NewError("store watcher needs a file backed store").
			WithHint("sync.watch_store requires storage.driver sqlite").
			Mark(ierr.ErrValidation)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to create file watcher").
			Mark(ierr.ErrSystem)
	}

	dir := filepath.Dir(storePath)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, ierr.WithError(err).
			WithHintf("failed to watch %s", dir).
			Mark(ierr.ErrSystem)
	}

	if debounce <= 0 {
		debounce = defaultDebounce
	}

	return &StoreWatcher{
		path:           storePath,
		watcher:        w,
		onChange:       onChange,
		logger:         log,
		debouncePeriod: debounce,
		done:           make(chan struct{}),
	}, nil
}

// Start begins watching for store changes
func (sw *StoreWatcher) Start(ctx context.Context) {
	sw.ctx, sw.cancel = context.WithCancel(context.WithoutCancel(ctx))
	go sw.watchLoop()
}

func (sw *StoreWatcher) watchLoop() {
	defer close(sw.done)
	for {
		select {
		case <-sw.ctx.Done():
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !sw.relevant(event) {
				continue
			}
			sw.logger.Debugw("store watcher detected change", "file", event.Name, "op", event.Op.String())
			sw.schedule()

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.logger.Warnw("store watcher error", "error", err)
		}
	}
}

// relevant keeps writes and creates of the store file and its journals
func (sw *StoreWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	return strings.HasPrefix(filepath.Base(event.Name), filepath.Base(sw.path))
}

// schedule debounces bursts of writes into one focus check
func (sw *StoreWatcher) schedule() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.debounceTimer != nil {
		sw.debounceTimer.Stop()
	}
	sw.debounceTimer = time.AfterFunc(sw.debouncePeriod, func() {
		if sw.ctx.Err() != nil {
			return
		}
		refreshed, err := sw.onChange(sw.ctx)
		if err != nil {
			sw.logger.Warnw("focus check after store change failed", "error", err)
			return
		}
		if refreshed {
			sw.logger.Debugw("applicants refreshed after foreign store change")
		}
	})
}

// Stop stops watching and waits for the watch loop to exit
func (sw *StoreWatcher) Stop() error {
	if sw.cancel != nil {
		sw.cancel()
	}

	sw.mu.Lock()
	if sw.debounceTimer != nil {
		sw.debounceTimer.Stop()
	}
	sw.mu.Unlock()

	err := sw.watcher.Close()
	if sw.ctx != nil {
		<-sw.done
	}
	return err
}
