package i18n

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Watch reloads the bundle whenever a .json file in dir changes. It returns once the
// watcher is installed; watching stops when ctx is cancelled.
func (b *Bundle) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create locale watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch locale dir %s: %w", dir, err)
	}

	log.Printf("[i18n] watching %s for translation changes", dir)
	go b.watchLoop(ctx, watcher)
	return nil
}

func (b *Bundle) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer func() { _ = watcher.Close() }()

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Ext(event.Name) != ".json" {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := filepath.Base(event.Name)
			debounceTimer = time.AfterFunc(reloadDebounce, func() {
				log.Printf("[i18n] change detected: %s", name)
				if err := b.Reload(); err != nil {
					log.Printf("[i18n] reload failed, keeping previous catalogs: %v", err)
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[i18n] watcher error: %v", err)
		}
	}
}
