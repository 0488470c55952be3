package local

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reports external changes under the current workspace root until
// ctx is cancelled. fn receives the workspace-relative slash path of each
// changed entry. New directories are added to the watch as they appear.
func (a *Adapter) Watch(ctx context.Context, fn func(path string)) error {
	root, err := a.rootFor(a.current)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// fsnotify does not recurse: seed the watch with every directory.
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				// Newly created directories need their own watch.
				if event.Op.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = watcher.Add(event.Name)
					}
				}

				if rel, err := filepath.Rel(root, event.Name); err == nil {
					fn(filepath.ToSlash(rel))
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				a.logger.Warn("watcher error", "err", err)
			}
		}
	}()

	return nil
}
