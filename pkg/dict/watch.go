package dict

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
)

// Watcher keeps the word lists of a directory registered while they change on
// disk. Hashers built before a change keep the instances they already hold.
type Watcher struct {
	dir      string
	reg      *Registry
	base     *Registry
	opts     RegisterOptions
	watcher  *fsnotify.Watcher
	logger   hclog.Logger
	onChange func(name string)
}

// NewWatcher registers every word list in dir and starts watching it. A
// removed word list gives its name back to whatever reg held before.
func NewWatcher(reg *Registry, dir string, opts RegisterOptions) (*Watcher, error) {
	base := reg.Clone()
	if _, err := reg.RegisterDir(dir, opts); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:     dir,
		reg:     reg,
		base:    base,
		opts:    opts,
		watcher: fw,
		logger:  hclog.NewNullLogger(),
	}, nil
}

// SetLogger sets the logger for reload events.
func (w *Watcher) SetLogger(logger hclog.Logger) {
	w.logger = logger
}

// SetBase sets the registrations restored when a word list is removed, for
// callers that registered dir before creating the watcher.
func (w *Watcher) SetBase(base *Registry) {
	w.base = base
}

// OnChange sets a callback run after a word list is reloaded or removed.
func (w *Watcher) OnChange(fn func(name string)) {
	w.onChange = fn
}

// Run handles events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("word-list watcher error", "dir", w.dir, "error", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	name, ok := wordListName(ev.Name)
	if !ok {
		return
	}

	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.reg.Restore(name, w.base)
		w.logger.Info("word list removed", "name", name, "restored", w.reg.Has(name))
		w.changed(name)
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		if err := w.reg.RegisterFile(name, ev.Name, w.opts); err != nil {
			// keep the previous registration, a half-written file is common
			w.logger.Warn("failed to reload word list", "name", name, "error", err)
			return
		}
		w.logger.Info("word list reloaded", "name", name)
		w.changed(name)
	}
}

func (w *Watcher) changed(name string) {
	if w.onChange != nil {
		w.onChange(name)
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
