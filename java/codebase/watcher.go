package codebase

import (
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileWatcher polls the roots of a codebase and reparses files whose
// modification time changed. After every poll that changed something it
// calls the change handler with the affected paths.
type FileWatcher struct {
	codebase     *Codebase
	pollInterval time.Duration
	onChange     func(changed []string)

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	modTimes map[string]time.Time
}

func NewFileWatcher(c *Codebase, interval time.Duration, onChange func(changed []string)) *FileWatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &FileWatcher{
		codebase:     c,
		pollInterval: interval,
		onChange:     onChange,
		stopCh:       make(chan struct{}),
		done:         make(chan struct{}),
		modTimes:     make(map[string]time.Time),
	}
}

// Start records the current modification times and polls in the
// background until Stop.
func (w *FileWatcher) Start() {
	w.Poll()
	go w.run()
}

// Stop ends polling and waits for a poll in progress to finish.
func (w *FileWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.done
}

func (w *FileWatcher) run() {
	defer close(w.done)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			if changed := w.Poll(); len(changed) > 0 && w.onChange != nil {
				w.onChange(changed)
			}
		}
	}
}

// Poll rescans files that appeared or changed since the last poll and
// drops files that disappeared. It returns the affected paths.
func (w *FileWatcher) Poll() []string {
	var changed []string
	current := make(map[string]bool)

	for _, root := range w.codebase.Roots() {
		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) != ".java" {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}

			current[path] = true
			lastMod, known := w.modTimes[path]
			if !known || !info.ModTime().Equal(lastMod) {
				w.modTimes[path] = info.ModTime()
				if err := w.codebase.ScanFile(path); err != nil {
					log.Warningf("%s: %s", path, err)
				}
				changed = append(changed, path)
			}
			return nil
		})
	}

	for path := range w.modTimes {
		if !current[path] {
			delete(w.modTimes, path)
			w.codebase.RemoveFile(path)
			changed = append(changed, path)
		}
	}
	if len(changed) > 0 {
		log.Infof("%d files changed", len(changed))
	}
	return changed
}
