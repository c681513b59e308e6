package viewer

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const settleDelay = 200 * time.Millisecond

type watcher struct {
	fs      *fsnotify.Watcher
	targets map[string]bool
}

// newWatcher watches the directories holding paths rather than the files
// themselves, so records replaced by rename are still seen.
func newWatcher(paths ...string) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &watcher{fs: fsw, targets: make(map[string]bool)}
	dirs := make(map[string]bool)
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			_ = fsw.Close()
			return nil, err
		}
		w.targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// run calls onChange once writes to the watched files have settled, until
// ctx is done.
func (w *watcher) run(ctx context.Context, onChange func()) {
	defer func() {
		_ = w.fs.Close()
	}()

	timer := time.NewTimer(settleDelay)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.matches(event) {
				continue
			}
			timer.Reset(settleDelay)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		case <-timer.C:
			log.Println("Record files changed, reloading")
			onChange()
		}
	}
}

func (w *watcher) matches(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.targets[abs]
}
