package codebase

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tliron/commonlog"
)

var watchLog = commonlog.GetLogger("hws.watcher")

// FileWatcher polls the project tree. Changed variable group files are
// reloaded and changed scripts re-indexed; deleted files are forgotten.
type FileWatcher struct {
	codebase     *Codebase
	stopCh       chan struct{}
	pollInterval time.Duration
	modTimes     map[string]time.Time

	// OnChange is called after a scan that changed the codebase.
	OnChange func()
}

func NewFileWatcher(c *Codebase) *FileWatcher {
	return &FileWatcher{
		codebase:     c,
		stopCh:       make(chan struct{}),
		pollInterval: c.Project().Config.Watch.IntervalOrDefault(),
		modTimes:     make(map[string]time.Time),
	}
}

func (w *FileWatcher) Start() {
	go w.run()
}

func (w *FileWatcher) Stop() {
	close(w.stopCh)
}

func (w *FileWatcher) run() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.prime()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			if w.scan() && w.OnChange != nil {
				w.OnChange()
			}
		}
	}
}

// prime records the current modification times without reloading; the
// codebase has already loaded everything once.
func (w *FileWatcher) prime() {
	w.walk(func(path string, info os.FileInfo) {
		w.modTimes[path] = info.ModTime()
	})
}

// scan reports whether anything changed since the previous scan.
func (w *FileWatcher) scan() bool {
	changed := false
	currentFiles := make(map[string]bool)

	w.walk(func(path string, info os.FileInfo) {
		currentFiles[path] = true

		lastMod, known := w.modTimes[path]
		if known && !info.ModTime().After(lastMod) {
			return
		}
		w.modTimes[path] = info.ModTime()
		changed = true
		w.reload(path)
	})

	for path := range w.modTimes {
		if !currentFiles[path] {
			delete(w.modTimes, path)
			changed = true
			w.forget(path)
		}
	}
	return changed
}

func (w *FileWatcher) walk(visit func(path string, info os.FileInfo)) {
	proj := w.codebase.Project()
	filepath.Walk(proj.RootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != proj.RootDir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if proj.IsScript(path) || proj.IsVariableFile(path) {
			visit(path, info)
		}
		return nil
	})
}

func (w *FileWatcher) reload(path string) {
	if w.codebase.Project().IsVariableFile(path) {
		if err := w.codebase.ReloadVariableFile(path); err != nil {
			watchLog.Warningf("reload %s: %s", path, err)
		}
		return
	}
	if w.isOpen(path) {
		watchLog.Debugf("%s is open in the editor, not re-indexing", path)
		return
	}
	watchLog.Debugf("re-indexing %s", path)
	if err := w.codebase.ScanFile(path); err != nil {
		watchLog.Warningf("scan %s: %s", path, err)
	}
}

func (w *FileWatcher) forget(path string) {
	if w.codebase.Project().IsVariableFile(path) {
		w.codebase.RemoveVariableFile(path)
		return
	}
	if w.isOpen(path) {
		return
	}
	w.codebase.RemoveFile(path)
}

// isOpen reports whether the editor owns the content of path.
func (w *FileWatcher) isOpen(path string) bool {
	return w.codebase.Cache().Lookup(pathToURI(path)) != nil
}
