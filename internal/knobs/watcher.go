package knobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher exposes a Set as a directory of files, one per knob, in the layout
// of a sysfs device node: global knobs at the top, per-channel attributes in
// a subdirectory per channel. Writing a file dispatches its content to the
// knob; the file is truncated once handled.
type Watcher struct {
	dir     string
	set     *Set
	watcher *fsnotify.Watcher
}

// NewWatcher creates the knob files under dir (missing ones only) and starts
// watching them. Call Run to process writes.
func NewWatcher(dir string, set *Set) (*Watcher, error) {
	w := &Watcher{dir: dir, set: set}
	if err := w.layout(); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("knobs: create watcher: %w", err)
	}
	for _, d := range w.dirs() {
		if err := fw.Add(d); err != nil {
			fw.Close()
			return nil, fmt.Errorf("knobs: watch %s: %w", d, err)
		}
	}
	w.watcher = fw
	return w, nil
}

func (w *Watcher) dirs() []string {
	seen := map[string]bool{w.dir: true}
	out := []string{w.dir}
	for _, n := range w.set.Names() {
		d := filepath.Dir(w.path(n))
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

func (w *Watcher) path(name string) string {
	return filepath.Join(w.dir, filepath.FromSlash(name))
}

func (w *Watcher) layout() error {
	for _, n := range w.set.Names() {
		p := w.path(n)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("knobs: %w", err)
		}
		f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY, 0o664)
		if err != nil {
			return fmt.Errorf("knobs: %w", err)
		}
		f.Close()
	}
	return nil
}

// knobName maps a file path back to its knob name, or "" if it is not one.
func (w *Watcher) knobName(path string) string {
	rel, err := filepath.Rel(w.dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	name := filepath.ToSlash(rel)
	if _, ok := w.set.knobs[name]; !ok {
		return ""
	}
	return name
}

// Run handles file writes until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name := w.knobName(event.Name)
			if name == "" {
				continue
			}
			w.handle(ctx, name, event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("knobs: watcher error", "err", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, name, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("knobs: read failed", "knob", name, "err", err)
		}
		return
	}
	value := strings.TrimSpace(string(data))
	if value == "" {
		return
	}

	if err := w.set.Write(ctx, name, value); err != nil {
		slog.Warn("knobs: write rejected", "knob", name, "value", value, "err", err)
	} else {
		slog.Debug("knobs: applied", "knob", name, "value", value)
	}
	if err := os.Truncate(path, 0); err != nil {
		slog.Warn("knobs: truncate failed", "knob", name, "err", err)
	}
}

// Close stops the file watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
