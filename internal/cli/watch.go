package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/hsmgen/internal/adapters/file"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for a burst of writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// Watch runs the pipeline over root once, then again for every input file
// that changes, until ctx is done. Editors often write a file in several
// steps, so changes are batched over debounce. onRun is called after each run.
func (p *Pipeline) Watch(ctx context.Context, root string, debounce time.Duration, onRun func(*Report)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := p.logger()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addTree(watcher, root); err != nil {
		return err
	}
	accept := p.matcher(root)
	logger.Info("Starting Watcher", "path", root)

	// Watching starts first so edits made during the initial run are not lost.
	report, err := p.Run(ctx, root)
	if err != nil {
		return err
	}
	if onRun != nil {
		onRun(report)
	}

	pending := map[string]struct{}{}
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping watcher")
			return nil

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, ev.Name); err != nil {
						logger.Warn("failed to watch directory", "path", ev.Name, "error", err)
					}
					continue
				}
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !accept(ev.Name) {
				continue
			}
			logger.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			pending[ev.Name] = struct{}{}
			timer.Reset(debounce)

		case <-timer.C:
			paths := existing(pending)
			pending = map[string]struct{}{}
			if len(paths) == 0 {
				continue
			}
			printSystemMessage("Change detected in '%s'.", strings.Join(paths, "', '"))

			report, err := p.RunFiles(ctx, paths)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			if onRun != nil {
				onRun(report)
			}
		}
	}
}

// matcher selects the events Watch reacts to. A file root only matches itself.
func (p *Pipeline) matcher(root string) func(string) bool {
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		root = filepath.Clean(root)
		return func(path string) bool { return filepath.Clean(path) == root }
	}
	return func(path string) bool { return file.HasExtension(path, p.Extensions) }
}

// addTree watches dir and its non-hidden subdirectories. For a file the
// parent directory is watched, which survives editors that replace the file.
func addTree(w *fsnotify.Watcher, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return w.Add(filepath.Dir(dir))
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// existing returns the pending paths that still exist, sorted.
func existing(pending map[string]struct{}) []string {
	var paths []string
	for p := range pending {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}
