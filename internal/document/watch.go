package document

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

const changeMask = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

// Watcher records whether a note changed on disk while it was being watched.
type Watcher struct {
	w    *fsnotify.Watcher
	name string
	done chan struct{}

	mu      sync.Mutex
	changed bool
}

// Watch starts watching path. The parent directory is watched rather than the
// file so that editors saving via rename are still noticed.
func Watch(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{w: fw, name: abs, done: make(chan struct{})}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.name || ev.Op&changeMask == 0 {
				continue
			}
			w.mu.Lock()
			w.changed = true
			w.mu.Unlock()
		case _, ok := <-w.w.Errors:
			if !ok {
				return
			}
			// Missed events: assume the worst.
			w.mu.Lock()
			w.changed = true
			w.mu.Unlock()
		}
	}
}

// Changed reports whether a change to the note has been seen so far.
func (w *Watcher) Changed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.changed
}

// Close stops watching and returns whether the note changed.
func (w *Watcher) Close() (bool, error) {
	err := w.w.Close()
	<-w.done
	return w.Changed(), err
}
