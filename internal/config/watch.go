package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// How long Watch keeps retrying to re-arm the watch after the file is
// replaced or momentarily absent during an atomic save.
const (
	rearmAttempts = 20
	rearmDelay    = 50 * time.Millisecond
)

// Watch monitors path for changes and calls onChange with the newly loaded
// Config each time the file is rewritten. It runs until ctx is cancelled.
//
// If a reload fails (e.g., invalid YAML), the error is logged and the
// previous config remains active; onChange is not called. If the file
// disappears and does not come back within the re-arm window, Watch returns
// an error rather than blocking forever with nothing watched.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	slog.Info("config: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			switch {
			case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
				reload(path, onChange)
				// An atomic save may have replaced the inode; re-add the path
				// so future writes are still seen.
				if err := rearm(ctx, watcher, path); err != nil {
					return fmt.Errorf("config: lost watch on %q: %w", path, err)
				}

			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				// Some editors save by renaming a temp file over the target.
				// Re-arm the watch on the new file and reload its contents.
				if err := rearm(ctx, watcher, path); err != nil {
					return fmt.Errorf("config: lost watch on %q: %w", path, err)
				}
				reload(path, onChange)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

// rearm re-adds path to the watcher, retrying briefly: during an atomic save
// the file may not exist for a moment between the rename steps.
func rearm(ctx context.Context, watcher *fsnotify.Watcher, path string) error {
	var err error
	for i := 0; i < rearmAttempts; i++ {
		if err = watcher.Add(path); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(rearmDelay):
		}
	}
	return err
}

func reload(path string, onChange func(*Config)) {
	cfg, err := Load(path)
	if err != nil {
		slog.Error("config: reload failed, keeping previous config",
			"path", path, "err", err)
		return
	}
	slog.Info("config: reloaded", "path", path)
	onChange(cfg)
}
