package browse

import (
	"path/filepath"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// SourceChangedMsg is sent when the watched source file was rewritten.
type SourceChangedMsg struct {
	Path    string
	Removed bool
}

// SourceWatcher watches a single source file for changes and emits
// SourceChangedMsg via tea.Cmd. The parent directory is watched so editors
// and tools that replace the file by rename are still noticed.
type SourceWatcher struct {
	watcher     *fsnotify.Watcher
	path        string
	debounceDur time.Duration
	log         zerolog.Logger
}

// NewSourceWatcher creates a watcher for path. Returns nil if fsnotify fails
// or the directory cannot be watched.
func NewSourceWatcher(path string, debounce time.Duration, log zerolog.Logger) *SourceWatcher {
	abs, err := filepath.Abs(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("watch: cannot resolve path")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn().Err(err).Msg("watch: failed to create fsnotify watcher")
		return nil
	}

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		log.Warn().Err(err).Str("dir", filepath.Dir(abs)).Msg("watch: cannot watch directory")
		_ = watcher.Close()
		return nil
	}

	return &SourceWatcher{
		watcher:     watcher,
		path:        abs,
		debounceDur: debounce,
		log:         log.With().Str("cmp", "source-watcher").Logger(),
	}
}

// Path returns the absolute path being watched.
func (w *SourceWatcher) Path() string { return w.path }

// Start returns a tea.Cmd that blocks until the source changes, then returns
// a SourceChangedMsg. The caller must re-invoke Start() after processing the
// message to continue watching.
func (w *SourceWatcher) Start() tea.Cmd {
	return func() tea.Msg {
		msg, ok := w.next()
		if !ok {
			return nil
		}
		return msg
	}
}

// next blocks until a debounced change to the source is seen. It returns
// false once the watcher is closed.
func (w *SourceWatcher) next() (SourceChangedMsg, bool) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return SourceChangedMsg{}, false
			}
			if !w.relevant(event) {
				continue
			}

			removed := isRemoval(event)
			debounce := time.NewTimer(w.debounceDur)

		debounceLoop:
			for {
				select {
				case e, ok := <-w.watcher.Events:
					if !ok {
						debounce.Stop()
						return SourceChangedMsg{}, false
					}
					if !w.relevant(e) {
						continue
					}
					// a later write supersedes an earlier removal
					removed = isRemoval(e)
					debounce.Reset(w.debounceDur)
				case <-debounce.C:
					break debounceLoop
				}
			}

			w.log.Debug().Str("path", w.path).Bool("removed", removed).Msg("source changed")
			return SourceChangedMsg{Path: w.path, Removed: removed}, true

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return SourceChangedMsg{}, false
			}
			w.log.Error().Err(err).Msg("watcher error")
		}
	}
}

func (w *SourceWatcher) relevant(e fsnotify.Event) bool {
	if filepath.Clean(e.Name) != w.path {
		return false
	}
	return e.Has(fsnotify.Write) || e.Has(fsnotify.Create) || isRemoval(e)
}

func isRemoval(e fsnotify.Event) bool {
	return e.Has(fsnotify.Remove) || e.Has(fsnotify.Rename)
}

// Close stops watching. A pending Start command returns nil.
func (w *SourceWatcher) Close() error {
	return w.watcher.Close()
}
