package catalog

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watcher reloads the store when mineral folders change on disk, so
// out-of-band edits (rsync deploys, manual fixes) appear without a restart.
type Watcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// NewWatcher starts watching the store's minerals directory. Call Run to
// begin processing events.
func NewWatcher(store *Store) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(store.MineralsRoot()); err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{store: store, watcher: fsw, debounce: 500 * time.Millisecond}, nil
}

// Run processes filesystem events until ctx is cancelled. Bursts of events
// (a publish writes several files) are coalesced into one reload.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("catalog watcher error")

		case <-reload:
			if err := w.store.Reload(); err != nil {
				log.Error().Err(err).Msg("catalog reload after filesystem change failed")
			}
		}
	}
}
