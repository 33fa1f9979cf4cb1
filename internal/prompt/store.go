package prompt

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Store serves templates from a YAML file, falling back to the built-in
// defaults when the file does not exist. It can reload the file on change.
type Store struct {
	path string

	mu  sync.RWMutex
	set *Set
}

// Ensure Store implements Renderer.
var _ Renderer = (*Store)(nil)

// NewStore loads templates from path. An empty path, or a path that does not
// exist, yields the built-in defaults.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the template file location.
func (s *Store) Path() string { return s.path }

// Render executes the named template from the current set.
func (s *Store) Render(id string, vars map[string]string) (string, error) {
	return s.current().Render(id, vars)
}

// Set returns the template set currently in use.
func (s *Store) Set() *Set { return s.current() }

func (s *Store) current() *Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set
}

// Reload re-reads the template file. On error the previous set stays active.
func (s *Store) Reload() error {
	set, err := s.load()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.set = set
	s.mu.Unlock()
	return nil
}

func (s *Store) load() (*Set, error) {
	if s.path == "" {
		return Defaults(), nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		zap.L().Info("prompt: template file not found, using built-in defaults", zap.String("path", s.path))
		return Defaults(), nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "prompt: read %s", s.path)
	}
	return Load(data)
}

// Watch reloads the template file whenever it is written, created or renamed
// into place. It blocks until ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		<-ctx.Done()
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return eris.Wrap(err, "prompt: create watcher")
	}
	defer w.Close() //nolint:errcheck

	// Watch the directory: editors often replace the file instead of writing it.
	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		return eris.Wrapf(err, "prompt: watch %s", dir)
	}
	target := filepath.Clean(s.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if err := s.Reload(); err != nil {
				zap.L().Warn("prompt: reload failed, keeping previous templates",
					zap.String("path", s.path),
					zap.Error(err),
				)
				continue
			}
			zap.L().Info("prompt: templates reloaded", zap.String("path", s.path))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			zap.L().Warn("prompt: watcher error", zap.Error(err))
		}
	}
}
