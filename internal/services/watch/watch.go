// Package watch reports changes under a project directory using fsnotify.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/temirov/promptgen/internal/filter"
	"github.com/temirov/promptgen/internal/utils"
)

const (
	errorCreateWatcherFormat = "create watcher: %w"
	errorWatchRootFormat     = "watch %s: %w"
)

// Watcher follows every visible directory of a project. Directories created while
// running are added when they are visible.
type Watcher struct {
	notifier   *fsnotify.Watcher
	root       string
	pathFilter *filter.PathFilter
	logger     *zap.Logger
}

// New starts watching rootDirectory. pathFilter decides which subdirectories are followed
// and which events are reported; nil follows everything.
func New(rootDirectory string, pathFilter *filter.PathFilter, logger *zap.Logger) (*Watcher, error) {
	absoluteRoot, absError := filepath.Abs(rootDirectory)
	if absError != nil {
		return nil, fmt.Errorf("abs failed for '%s': %w", rootDirectory, absError)
	}
	notifier, createError := fsnotify.NewWatcher()
	if createError != nil {
		return nil, fmt.Errorf(errorCreateWatcherFormat, createError)
	}
	watcher := &Watcher{
		notifier:   notifier,
		root:       absoluteRoot,
		pathFilter: pathFilter,
		logger:     utils.LoggerOrNop(logger),
	}
	if addError := notifier.Add(absoluteRoot); addError != nil {
		_ = notifier.Close()
		return nil, fmt.Errorf(errorWatchRootFormat, absoluteRoot, addError)
	}
	watcher.addSubdirectories(absoluteRoot)
	return watcher, nil
}

// Run delivers the path of every relevant change to onChange until ctx is done.
// onChange runs on the watcher goroutine. Run closes the watcher on return.
func (watcher *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	defer watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, open := <-watcher.notifier.Events:
			if !open {
				return nil
			}
			watcher.handle(event, onChange)
		case watchError, open := <-watcher.notifier.Errors:
			if !open {
				return nil
			}
			watcher.logger.Warn("watch error", zap.Error(watchError))
		}
	}
}

// Close stops watching.
func (watcher *Watcher) Close() error {
	return watcher.notifier.Close()
}

// WatchedDirectories lists the directories currently followed.
func (watcher *Watcher) WatchedDirectories() []string {
	return watcher.notifier.WatchList()
}

func (watcher *Watcher) handle(event fsnotify.Event, onChange func(path string)) {
	if event.Op == fsnotify.Chmod || !utils.IsWithinRoot(event.Name, watcher.root) {
		return
	}
	if watcher.pathFilter == nil {
		if fileInformation, statError := os.Stat(event.Name); statError == nil && fileInformation.IsDir() && event.Has(fsnotify.Create) {
			watcher.addDirectory(event.Name)
			watcher.addSubdirectories(event.Name)
		}
	} else if visible, isDirectory, probed := watcher.pathFilter.Probe(event.Name); probed {
		if !visible {
			return
		}
		if isDirectory && event.Has(fsnotify.Create) {
			watcher.addDirectory(event.Name)
			watcher.addSubdirectories(event.Name)
		}
	} else if !watcher.visible(event.Name, false) && !watcher.visible(event.Name, true) {
		// removed or renamed away; the type is unknown
		return
	}
	watcher.logger.Debug("project changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
	if onChange != nil {
		onChange(event.Name)
	}
}

func (watcher *Watcher) addSubdirectories(directoryPath string) {
	walkError := filepath.WalkDir(directoryPath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			watcher.logger.Debug("skipping unreadable directory", zap.String("path", path), zap.Error(err))
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == directoryPath || !entry.IsDir() {
			return nil
		}
		if !watcher.visible(path, true) {
			return filepath.SkipDir
		}
		watcher.addDirectory(path)
		return nil
	})
	if walkError != nil {
		watcher.logger.Debug("watch walk stopped", zap.String("path", directoryPath), zap.Error(walkError))
	}
}

func (watcher *Watcher) addDirectory(directoryPath string) {
	if addError := watcher.notifier.Add(directoryPath); addError != nil {
		watcher.logger.Warn("unable to watch directory", zap.String("path", directoryPath), zap.Error(addError))
	}
}

func (watcher *Watcher) visible(path string, isDirectory bool) bool {
	return watcher.pathFilter == nil || watcher.pathFilter.IsVisible(path, isDirectory)
}
