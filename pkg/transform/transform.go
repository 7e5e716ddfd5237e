// Package transform holds the named text transforms that can be applied to
// dictionary words, e.g. {{noun caps}}.
package transform

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

var (
	ErrUnknownTransform = errors.New("unknown transform")
	ErrInvalidTransform = errors.New("invalid transform")
)

// Func maps one word to another.
type Func func(string) string

// Transform is a named Apply with an optional Undo. Undo is only needed when a
// format using the transform has to be decoded.
type Transform struct {
	Name  string
	Apply Func
	Undo  Func
}

// Reversible reports whether the transform has an inverse.
func (t Transform) Reversible() bool {
	return t.Undo != nil
}

// Registry maps transform names to transforms.
type Registry struct {
	transforms map[string]Transform
	mu         sync.RWMutex
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{transforms: make(map[string]Transform)}
}

var defaultRegistry = func() *Registry {
	r := NewRegistry()
	r.Register("uppercase", UpperFirst, Lower)
	r.Register("caps", strings.ToUpper, Lower)
	r.Register("lowercase", Lower, Lower)
	return r
}()

// Default returns the process-wide registry holding the built-in transforms.
func Default() *Registry {
	return defaultRegistry
}

// Clone copies the registry so callers can extend it without touching the original.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := NewRegistry()
	for name, t := range r.transforms {
		c.transforms[name] = t
	}
	return c
}

// Register adds or replaces a transform. undo may be nil.
func (r *Registry) Register(name string, apply, undo Func) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidTransform)
	}
	if apply == nil {
		return fmt.Errorf("%w: %q has no apply function", ErrInvalidTransform, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.transforms[name] = Transform{Name: name, Apply: apply, Undo: undo}
	return nil
}

// Lookup returns the named transform.
func (r *Registry) Lookup(name string) (Transform, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transforms[name]
	return t, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.transforms))
	for name := range r.transforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve looks up every name, in order.
func (r *Registry) Resolve(names []string) (Chain, error) {
	chain := make(Chain, 0, len(names))
	for _, name := range names {
		t, ok := r.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTransform, name)
		}
		chain = append(chain, t)
	}
	return chain, nil
}

// Chain is an ordered transform pipeline.
type Chain []Transform

// Apply runs every transform in order.
func (c Chain) Apply(s string) string {
	for _, t := range c {
		s = t.Apply(s)
	}
	return s
}

// Undo runs the inverses in reverse order. ok is false if a transform has no
// inverse.
func (c Chain) Undo(s string) (string, bool) {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].Undo == nil {
			return "", false
		}
		s = c[i].Undo(s)
	}
	return s, true
}

// Irreversible returns the names of transforms without an inverse.
func (c Chain) Irreversible() []string {
	var names []string
	for _, t := range c {
		if !t.Reversible() {
			names = append(names, t.Name)
		}
	}
	return names
}

// UpperFirst upper-cases the first rune.
func UpperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Lower lower-cases the whole word.
func Lower(s string) string {
	return strings.ToLower(s)
}
