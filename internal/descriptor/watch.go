package descriptor

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// RootWatcher watches a resolved project root for removal or rewrite of its
// claiming marker file, backing Session.watchRootLiveness so a session can
// stop itself early when its workspace disappears out from under it rather
// than waiting out the full idle timeout. It is a thin wrapper over
// fsnotify, the only file-watching library present anywhere in the
// retrieved corpus.
type RootWatcher struct {
	watcher *fsnotify.Watcher
	Events  chan fsnotify.Event
	Errors  chan error
}

// WatchRoot starts watching root for filesystem events. Callers must call
// Close when done.
func WatchRoot(root string) (*RootWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(root); err != nil {
		w.Close()
		return nil, err
	}
	return &RootWatcher{watcher: w, Events: w.Events, Errors: w.Errors}, nil
}

// Close stops the underlying fsnotify watcher.
func (rw *RootWatcher) Close() error {
	return rw.watcher.Close()
}

// StillClaims reports whether root still contains at least one of the
// descriptor's markers, used after a watch event fires to decide whether a
// session's project root has gone stale.
func (d Descriptor) StillClaims(root string) bool {
	if root == "" {
		return false
	}
	for _, marker := range d.Markers {
		if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
			return true
		}
	}
	return false
}
