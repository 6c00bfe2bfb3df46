package content

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce window for filesystem event bursts (editors write several events
// per save).
const watchDebounce = 200 * time.Millisecond

// Watch monitors the content directory and reloads all fragments when files
// change, invoking onReplaced after each successful reload. Blocks until ctx
// is cancelled.
func Watch(ctx context.Context, loader *Loader, onReplaced func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the root and every subdirectory.
	err = filepath.Walk(loader.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("Watching content directory %s", loader.dir)

	var timer *time.Timer
	reload := func() {
		if _, err := loader.LoadAll(); err != nil {
			log.Printf("ERROR: Content reload failed: %v", err)
			return
		}
		if onReplaced != nil {
			onReplaced()
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// New subdirectories need their own watch.
			if event.Op.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, reload)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Content watcher error: %v", watchErr)
		}
	}
}
