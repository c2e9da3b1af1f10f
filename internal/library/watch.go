package library

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces bursts of fs events into a single rescan.
const watchDebounce = 500 * time.Millisecond

// Watch rescans dir whenever files are created, removed or renamed in it.
// It blocks until ctx is canceled.
func (l *Library) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	log.Infof("watching ROM directory: %s", dir)

	var debounce *time.Timer
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(watchDebounce)
			}
			pending = debounce.C
		case <-pending:
			pending = nil
			res, err := l.Scan(dir, false)
			if err != nil {
				log.Errorf("rescan after fs event: %s", err)
				continue
			}
			if res.Added+res.Updated+res.Pruned > 0 {
				log.Infof("library rescan: %d added, %d updated, %d pruned",
					res.Added, res.Updated, res.Pruned)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("watcher error: %s", err)
		}
	}
}
