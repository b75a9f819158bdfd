package service

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchKeys reloads the keys file whenever it is written or replaced.
// It blocks until ctx is done. Without a keys file it returns immediately.
//
// The containing directory is watched so that editors replacing the file
// by rename keep triggering reloads.
func (s *Service) WatchKeys(ctx context.Context) error {
	path := s.cfg.Registry.KeysFile
	if path == "" {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	s.log.Debug("watching keys file", "path", abs)

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || (!event.Has(fsnotify.Write) && !event.Has(fsnotify.Create)) {
				continue
			}
			if _, err := s.ReloadKeys(); err != nil {
				s.log.Warn("keys file partially reloaded", "path", abs, "err", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("keys file watcher error", "err", err)
		case <-ctx.Done():
			s.log.Debug("keys file watcher stopping")
			return nil
		}
	}
}
