package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robinvdvleuten/financial/logger"
)

// DebounceDelay is how long Watch waits for a burst of events to settle.
// Editors and exports often write files in multiple steps.
var DebounceDelay = 100 * time.Millisecond

// Watch calls fn once, then again every time filename changes, until ctx is
// done. The directory is watched instead of the file so atomic saves, which
// replace the file, keep being noticed. Errors from fn are logged and do not
// stop watching.
func Watch(ctx context.Context, filename string, fn func(context.Context) error) error {
	log := logger.FromContext(ctx)

	abs, err := filepath.Abs(filename)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path for %s: %w", filename, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filename, err)
	}

	run := func() {
		if err := fn(ctx); err != nil {
			log.Error().Err(err).Str("file", filename).Msg("run failed")
		}
	}
	run()

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()
	changed := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			// Remove/Rename are common in atomic saves
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug().Str("file", filename).Stringer("op", event.Op).Msg("change detected")

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(DebounceDelay, func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})

		case <-changed:
			run()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("file watcher error")
		}
	}
}
