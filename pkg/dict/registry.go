package dict

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
)

//go:embed wordlists/*.txt
var wordlists embed.FS

// Factory builds one dictionary instance for one placeholder.
type Factory func(opts Options) (Dictionary, error)

// RegisterOptions describe a registered dictionary.
type RegisterOptions struct {
	Description string
	// UnhashSafe forces safe normalisation for every instance.
	UnhashSafe bool
}

// Info is what Registry.List reports about a dictionary.
type Info struct {
	Name        string
	Description string
	UnhashSafe  bool
}

type registration struct {
	factory Factory
	opts    RegisterOptions
}

// Registry maps dictionary names to factories.
type Registry struct {
	dicts map[string]registration
	mu    sync.RWMutex
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{dicts: make(map[string]registration)}
}

var defaultRegistry = func() *Registry {
	r := NewRegistry()
	if err := r.registerBuiltins(); err != nil {
		panic(fmt.Sprintf("dict: built-in dictionaries: %v", err))
	}
	return r
}()

// Default returns the process-wide registry holding the built-in dictionaries.
func Default() *Registry {
	return defaultRegistry
}

func (r *Registry) registerBuiltins() error {
	entries, err := wordlists.ReadDir("wordlists")
	if err != nil {
		return err
	}
	for _, e := range entries {
		f, err := wordlists.Open(path.Join("wordlists", e.Name()))
		if err != nil {
			return err
		}
		words, err := ReadWords(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", e.Name(), err)
		}
		name := strings.TrimSuffix(e.Name(), ".txt")
		r.Register(name, ArrayFactory(words), RegisterOptions{
			Description: fmt.Sprintf("built-in %s list (%d words)", name, len(words)),
		})
	}

	r.Register("decimal", func(opts Options) (Dictionary, error) {
		if err := opts.Only(); err != nil {
			return nil, err
		}
		w, err := opts.Width(DefaultWidth)
		if err != nil {
			return nil, err
		}
		return NewDecimal(w)
	}, RegisterOptions{Description: "zero-padded decimal number, {{decimal N}} for N digits"})

	r.Register("hex", func(opts Options) (Dictionary, error) {
		if err := opts.Only(); err != nil {
			return nil, err
		}
		w, err := opts.Width(DefaultWidth)
		if err != nil {
			return nil, err
		}
		return NewHex(w)
	}, RegisterOptions{Description: "zero-padded lowercase hex number, {{hex N}} for N nibbles"})

	return nil
}

// Clone copies the registry so callers can extend it without touching the original.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := NewRegistry()
	for name, reg := range r.dicts {
		c.dicts[name] = reg
	}
	return c
}

// Register adds or replaces a dictionary factory.
func (r *Registry) Register(name string, factory Factory, opts RegisterOptions) error {
	if name == "" || factory == nil {
		return fmt.Errorf("dictionary registration requires a name and a factory")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.dicts[name] = registration{factory: factory, opts: opts}
	return nil
}

// RegisterWords registers a fixed word list.
func (r *Registry) RegisterWords(name string, words []string, opts RegisterOptions) error {
	return r.Register(name, ArrayFactory(words), opts)
}

// Unregister removes a dictionary. Existing instances are unaffected.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.dicts, name)
}

// Restore puts back the registration name has in from, or removes name when
// from does not have it.
func (r *Registry) Restore(name string, from *Registry) {
	from.mu.RLock()
	reg, ok := from.dicts[name]
	from.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.dicts[name] = reg
	} else {
		delete(r.dicts, name)
	}
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.dicts[name]
	return ok
}

// List describes the registered dictionaries, sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.dicts))
	for name, reg := range r.dicts {
		infos = append(infos, Info{
			Name:        name,
			Description: reg.opts.Description,
			UnhashSafe:  reg.opts.UnhashSafe,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// New builds an instance of the named dictionary and checks its size.
func (r *Registry) New(name string, opts Options) (Dictionary, error) {
	r.mu.RLock()
	reg, ok := r.dicts[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDictionary, name)
	}

	if reg.opts.UnhashSafe {
		opts.Safe = true
	}
	d, err := reg.factory(opts)
	if err != nil {
		return nil, fmt.Errorf("dictionary %q: %w", name, err)
	}
	if err := Check(d); err != nil {
		return nil, fmt.Errorf("dictionary %q: %w", name, err)
	}
	return d, nil
}

// ArrayFactory returns a factory of Array dictionaries over words. The
// length-filtered lists are cached per filter combination.
func ArrayFactory(words []string) Factory {
	words = append([]string(nil), words...)

	var mu sync.Mutex
	cache := make(map[string][]string)

	return func(opts Options) (Dictionary, error) {
		if err := checkArrayOptions(opts); err != nil {
			return nil, err
		}
		key := opts.Params["min-length"] + ":" + opts.Params["max-length"] + ":" + opts.Params["exact-length"]

		mu.Lock()
		filtered, ok := cache[key]
		mu.Unlock()

		if !ok {
			var err error
			filtered, err = filterLength(words, opts)
			if err != nil {
				return nil, err
			}
			mu.Lock()
			cache[key] = filtered
			mu.Unlock()
		}
		return newArray(filtered, opts)
	}
}
