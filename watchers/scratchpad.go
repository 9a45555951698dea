package watchers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/reusee/bridges/configs"
	"github.com/reusee/bridges/logs"
	"github.com/reusee/bridges/storages"
	"github.com/reusee/bridges/vars"
)

const (
	WhisperTopic   = "scratchpad_whisper"
	WhisperEmotion = "✍️"
	whisperPrefix  = "Whisper from scratchpad: "

	DefaultDebounce = 300 * time.Millisecond
)

type ScratchpadPath string

func (Module) ScratchpadPath(
	loader configs.Loader,
) ScratchpadPath {
	return vars.FirstNonZero(
		configs.First[ScratchpadPath](loader, "scratchpad_path"),
		ScratchpadPath(os.Getenv("BRIDGE_SCRATCHPAD")),
	)
}

type Appender interface {
	Append(ctx context.Context, e storages.Entry) (storages.Entry, error)
}

// Scratchpad journals the content of a text file each time it settles after a write.
type Scratchpad struct {
	path     string
	debounce time.Duration
	appender Appender
	logger   logs.Logger
	last     string
	ready    chan struct{}
}

type NewScratchpad func(path string, appender Appender) *Scratchpad

func (Module) NewScratchpad(
	logger logs.Logger,
) NewScratchpad {
	return func(path string, appender Appender) *Scratchpad {
		return &Scratchpad{
			path:     filepath.Clean(path),
			debounce: DefaultDebounce,
			appender: appender,
			logger:   logger,
			ready:    make(chan struct{}),
		}
	}
}

func (s *Scratchpad) SetDebounce(d time.Duration) {
	s.debounce = d
}

// Ready is closed once Run watches the file. Writes after that are journaled.
func (s *Scratchpad) Ready() <-chan struct{} {
	return s.ready
}

// Run creates the file if missing and watches it until ctx is done. Content
// present when the watch is registered is not journaled.
func (s *Scratchpad) Run(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return err
	}
	f.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("scratchpad watcher: %w", err)
	}
	defer watcher.Close()
	// the directory, editors replace files by rename
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("scratchpad watcher: %w", err)
	}
	s.last, _ = s.read()
	close(s.ready)
	s.logger.InfoContext(ctx, "watching scratchpad", "path", s.path)

	timer := time.NewTimer(s.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {

		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != s.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(s.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.WarnContext(ctx, "scratchpad watcher", "error", err)

		case <-timer.C:
			s.flush(ctx)

		}
	}
}

func (s *Scratchpad) read() (string, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(content)), nil
}

func (s *Scratchpad) flush(ctx context.Context) {
	content, err := s.read()
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		s.logger.WarnContext(ctx, "read scratchpad", "error", err)
		return
	}
	if content == "" || content == s.last {
		return
	}
	s.last = content

	entry, err := s.appender.Append(ctx, storages.Entry{
		Content: whisperPrefix + content,
		Emotion: WhisperEmotion,
		Topic:   WhisperTopic,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "journal scratchpad", "error", err)
		return
	}
	s.logger.InfoContext(ctx, "scratchpad journaled", "id", entry.ID)
}
