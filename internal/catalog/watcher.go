package catalog

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/raido/internal/debounce"
)

// reloadQuiet is the quiet window before a change event triggers a reload.
// Editors and fetch scripts typically replace the file with several events
// in quick succession.
const reloadQuiet = 300 * time.Millisecond

// Watch observes the source document and calls onChange whenever its
// checksum actually changes. It blocks until ctx is cancelled.
//
// The watch is placed on the parent directory, not the file itself, because
// atomic replacement (tmp file + rename) swaps the inode out from under a
// file-level watch.
func Watch(ctx context.Context, src *Source, logger *slog.Logger, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(src.Path())
	if err := w.Add(dir); err != nil {
		return err
	}

	_, lastSum, err := src.Load()
	if err != nil {
		logger.Warn("watcher: initial checksum failed", slog.String("error", err.Error()))
	}

	sched := debounce.New(reloadQuiet)
	defer sched.Cancel()

	fire := make(chan struct{}, 1)
	logger.Info("watcher: started", slog.String("source", src.Path()))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			_, sum, loadErr := src.Load()
			if loadErr != nil {
				logger.Warn("watcher: reload read failed", slog.String("error", loadErr.Error()))
				continue
			}
			if sum == lastSum {
				continue
			}
			lastSum = sum
			logger.Info("watcher: source changed", slog.String("checksum", sum))
			if onChange != nil {
				onChange()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != src.Path() {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			sched.Schedule(func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
