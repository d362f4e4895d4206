// Package filestore keeps the training payload in a JSON file and turns
// writes to that file into change notifications.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
)

type Store struct {
	path string
}

func New(path string) (*Store, error) {
	if path == "" {
		path = "./data/training.json"
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve training path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("create training dir: %w", err)
	}
	return &Store{path: abs}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Load(_ context.Context) ([]byte, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrTrainingPayloadMissing
		}
		return nil, fmt.Errorf("read training file: %w", err)
	}
	return raw, nil
}

// Save replaces the file atomically so readers never observe a partial
// payload.
func (s *Store) Save(_ context.Context, payload []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".training-*.json")
	if err != nil {
		return fmt.Errorf("create temp training file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp training file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp training file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace training file: %w", err)
	}
	return nil
}

// SubscribeTrainingUpdated invokes handler whenever the payload file is
// written or replaced, until ctx is done. The parent directory is watched
// because atomic replacement swaps the inode.
func (s *Store) SubscribeTrainingUpdated(ctx context.Context, handler func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create training watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch training dir: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != s.path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := handler(ctx); err != nil {
				slog.Warn("training_reload_failed", "path", s.path, "error", err.Error())
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("training_watch_error", "path", s.path, "error", err.Error())
		}
	}
}
