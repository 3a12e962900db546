package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce window for editors that write config files in several events
// (truncate+write, or rename-into-place).
const watchDebounce = 300 * time.Millisecond

// Watch re-reads the config file whenever it changes on disk and hands the
// freshly loaded config to onChange. The parent directory is watched rather
// than the file itself so atomic-rename saves keep working. Blocks until ctx
// is cancelled; a config that fails to load or validate is logged and skipped.
func Watch(ctx context.Context, path string, log *slog.Logger, onChange func(*Config)) error {
	if log == nil {
		log = slog.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	log.Info("config.watch_started", "path", abs)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				fire = timer.C
			} else {
				timer.Reset(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("config.watch_error", "error", err)

		case <-fire:
			timer = nil
			fire = nil
			cfg, err := Load(abs)
			if err != nil {
				log.Error("config.reload_failed", "path", abs, "error", err)
				continue
			}
			log.Info("config.reloaded", "path", abs)
			onChange(cfg)
		}
	}
}
