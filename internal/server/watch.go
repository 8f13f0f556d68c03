package server

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jjtimmons/seqcmp/internal/seq"
	"github.com/jjtimmons/seqcmp/internal/session"
)

// debounce is how long a file must be quiet before it's reloaded.
const debounce = 100 * time.Millisecond

// Reload reads the FASTA file at path into sess, replacing its records.
func Reload(sess *session.Session, path string) error {
	recs, err := seq.ReadFile(path)
	if err != nil {
		return err
	}
	return sess.Load(path, recs)
}

// Watch calls reload each time the file at path is written or recreated,
// until ctx is done. The file's directory is watched so that editors which
// replace the file by renaming are still seen.
func Watch(ctx context.Context, path string, logger *slog.Logger, reload func() error) error {
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	logger.Info("watching", "path", abs)

	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				timer.Reset(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "path", abs, "error", err)

		case <-timer.C:
			if err := reload(); err != nil {
				logger.Warn("failed to reload, keeping previous records", "path", abs, "error", err)
				continue
			}
			logger.Info("reloaded", "path", abs)
		}
	}
}
