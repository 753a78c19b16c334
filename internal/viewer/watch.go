package viewer

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/gltf-viewer/internal/logger"
)

// watch reloads the scene on the next frame after path changes on disk. The
// parent directory is watched since editors often replace files by rename.
func (v *Viewer) watch(path string) {
	if v.watcher != nil {
		v.watcher.Close()
		v.watcher = nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("scene watcher unavailable", zap.Error(err))
		return
	}
	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		logger.Warn("watching scene directory failed", zap.String("path", target), zap.Error(err))
		w.Close()
		return
	}
	v.watcher = w
	go v.watchLoop(w, target)
}

func (v *Viewer) watchLoop(w *fsnotify.Watcher, target string) {
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if isReloadEvent(event, target) {
				logger.Debug("scene changed on disk", zap.String("path", target), zap.Stringer("op", event.Op))
				v.reload.Store(true)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warn("scene watcher error", zap.Error(err))
		}
	}
}

func isReloadEvent(event fsnotify.Event, target string) bool {
	if filepath.Clean(event.Name) != target {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}
