package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/blackroad/cli/pkg/logx"
	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 200 * time.Millisecond

// ChangeFunc receives the settings before and after a change on disk.
type ChangeFunc func(prev, next Settings)

// Watch reloads settings whenever the settings file changes and calls fn when
// the loaded value differs from the previous one. It blocks until ctx is done.
//
// The parent directory is watched rather than the file so editors that replace
// the file on save are still observed.
func (s *Store) Watch(ctx context.Context, fn ChangeFunc) error {
	dir := filepath.Dir(s.path)
	file := filepath.Base(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}

	prev, err := s.Load()
	if err != nil {
		s.log.Warn("initial settings load failed", logx.Err(err))
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start settings watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	var (
		mu      sync.Mutex
		timer   *time.Timer
		stopped bool
		pending sync.WaitGroup
	)
	reload := func() {
		next, err := s.Load()
		if err != nil {
			s.log.Warn("settings reload failed", logx.String("path", s.path), logx.Err(err))
			return
		}
		mu.Lock()
		if stopped {
			mu.Unlock()
			return
		}
		old := prev
		prev = next
		mu.Unlock()
		if old != next {
			s.log.Debug("settings changed", logx.String("path", s.path))
			fn(old, next)
		}
	}
	debounce := func() {
		mu.Lock()
		defer mu.Unlock()
		if stopped {
			return
		}
		if timer != nil && timer.Stop() {
			pending.Done()
		}
		pending.Add(1)
		timer = time.AfterFunc(watchDebounce, func() {
			defer pending.Done()
			reload()
		})
	}
	// fn is never called once Watch has returned.
	defer func() {
		mu.Lock()
		stopped = true
		if timer != nil && timer.Stop() {
			pending.Done()
		}
		mu.Unlock()
		pending.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Base(ev.Name), file) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				debounce()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("settings watch error", logx.String("dir", dir), logx.Err(err))
		}
	}
}

// APIKeyChanged reports whether a settings change replaced the API key.
func APIKeyChanged(prev, next Settings) bool {
	return prev.APIKey != next.APIKey
}
