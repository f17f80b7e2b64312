package jsonlt

import (
	"github.com/fsnotify/fsnotify"

	"github.com/jsonlt/jsonlt-go/internal/jsonlterr"
)

// Watcher notifies a caller whenever t's underlying file changes on
// disk, so a long-lived reader can reload proactively instead of
// relying on ensure_fresh's lazy stat-on-read check. It is a
// convenience: every call to Table's read methods remains correct
// without one.
type Watcher struct {
	fsw     *fsnotify.Watcher
	Changed <-chan struct{}
	Errors  <-chan error
	done    chan struct{}
}

// Watch starts watching t's file for external changes.
func Watch(t *Table) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, jsonlterr.WrapFileError("cannot create file watcher", err)
	}
	if err := fsw.Add(t.path); err != nil {
		_ = fsw.Close()
		return nil, jsonlterr.WrapFileError("cannot watch table file", err)
	}

	changed := make(chan struct{}, 1)
	errs := make(chan error, 1)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					select {
					case changed <- struct{}{}:
					default:
					}
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				select {
				case errs <- err:
				default:
				}
			case <-done:
				return
			}
		}
	}()

	return &Watcher{fsw: fsw, Changed: changed, Errors: errs, done: done}, nil
}

// Close stops the watcher and releases its OS resources.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
