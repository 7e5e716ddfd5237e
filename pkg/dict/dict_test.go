package dict

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/google/go-cmp/cmp"

	"github.com/getcreddy/humanhash/pkg/transform"
)

var testWords = []string{"frog", "bear", "tree", "cat", "wolf", "octopus", "tiger", "slug"}

func TestArrayLengthFilters(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
		want   []string
	}{
		{"none", nil, testWords},
		{"exact", map[string]string{"exact-length": "5"}, []string{"tiger"}},
		{"min", map[string]string{"min-length": "7"}, []string{"octopus"}},
		{"max", map[string]string{"max-length": "3"}, []string{"cat"}},
		{"min and max", map[string]string{"min-length": "4", "max-length": "4"}, []string{"frog", "bear", "tree", "wolf", "slug"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewArray(testWords, Options{Params: tt.params})
			if err != nil {
				t.Fatalf("NewArray: %v", err)
			}
			if diff := cmp.Diff(tt.want, a.Words()); diff != "" {
				t.Errorf("words mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestArrayEmpty(t *testing.T) {
	_, err := NewArray(testWords, Options{Params: map[string]string{"exact-length": "2"}})
	if !errors.Is(err, ErrEmptyDictionary) {
		t.Errorf("error = %v, want ErrEmptyDictionary", err)
	}
}

func TestArrayInvalidOption(t *testing.T) {
	for _, v := range []string{"0", "-1", "five"} {
		_, err := NewArray(testWords, Options{Params: map[string]string{"min-length": v}})
		if !errors.Is(err, ErrInvalidOption) {
			t.Errorf("min-length=%s error = %v, want ErrInvalidOption", v, err)
		}
	}
}

func TestArraySafe(t *testing.T) {
	words := []string{"ice-cream", "Ice Cream", "berners_lee", "apple", "Apple", "--", "kiwi"}
	a, err := NewArray(words, Options{Safe: true})
	if err != nil {
		t.Fatalf("NewArray: %v", err)
	}
	want := []string{"icecream", "bernerslee", "apple", "kiwi"}
	if diff := cmp.Diff(want, a.Words()); diff != "" {
		t.Errorf("words mismatch (-want +got):\n%s", diff)
	}
}

func TestArrayTransforms(t *testing.T) {
	chain, err := transform.Default().Resolve([]string{"caps"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	a, err := NewArray(testWords, Options{Transforms: chain})
	if err != nil {
		t.Fatalf("NewArray: %v", err)
	}

	w, err := a.Entry(5)
	if err != nil || w != "OCTOPUS" {
		t.Errorf("Entry(5) = %q, %v, want OCTOPUS", w, err)
	}
	if i, ok := a.Lookup("OCTOPUS"); !ok || i != 5 {
		t.Errorf("Lookup(OCTOPUS) = %d, %v, want 5, true", i, ok)
	}
	if _, ok := a.Lookup("octopus"); ok {
		t.Error("Lookup matched untransformed text")
	}
	if a.MaxEntryLen() != len("OCTOPUS") {
		t.Errorf("MaxEntryLen() = %d", a.MaxEntryLen())
	}
}

func TestArrayLookupFirstMatch(t *testing.T) {
	a, err := NewArray([]string{"x", "y", "x"}, Options{})
	if err != nil {
		t.Fatalf("NewArray: %v", err)
	}
	if i, _ := a.Lookup("x"); i != 0 {
		t.Errorf("Lookup(x) = %d, want 0", i)
	}
	if _, err := a.Entry(3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Entry(3) error = %v", err)
	}
}

func TestNumeric(t *testing.T) {
	tests := []struct {
		name  string
		dict  func() (*Numeric, error)
		size  int
		index int
		word  string
	}{
		{"decimal 1", func() (*Numeric, error) { return NewDecimal(1) }, 10, 8, "8"},
		{"decimal 4", func() (*Numeric, error) { return NewDecimal(4) }, 10000, 167, "0167"},
		{"hex 4", func() (*Numeric, error) { return NewHex(4) }, 65536, 0x49f6, "49f6"},
		{"hex 2", func() (*Numeric, error) { return NewHex(2) }, 256, 10, "0a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := tt.dict()
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			if d.Size() != tt.size {
				t.Errorf("Size() = %d, want %d", d.Size(), tt.size)
			}
			w, err := d.Entry(tt.index)
			if err != nil || w != tt.word {
				t.Errorf("Entry(%d) = %q, %v, want %q", tt.index, w, err, tt.word)
			}
			if i, ok := d.Lookup(tt.word); !ok || i != tt.index {
				t.Errorf("Lookup(%q) = %d, %v, want %d", tt.word, i, ok, tt.index)
			}
		})
	}
}

func TestNumericLookupStrict(t *testing.T) {
	d, _ := NewHex(4)
	for _, w := range []string{"49F6", "49f", "049f6", "+9f6", "xyz1", ""} {
		if _, ok := d.Lookup(w); ok {
			t.Errorf("Lookup(%q) succeeded", w)
		}
	}
}

func TestNumericWidthBounds(t *testing.T) {
	if _, err := NewDecimal(MaxDecimalDigits); err != nil {
		t.Errorf("NewDecimal(%d): %v", MaxDecimalDigits, err)
	}
	if _, err := NewHex(MaxHexNibbles); err != nil {
		t.Errorf("NewHex(%d): %v", MaxHexNibbles, err)
	}
	for _, w := range []int{0, -1, MaxDecimalDigits + 1} {
		if _, err := NewDecimal(w); !errors.Is(err, ErrInvalidWidth) {
			t.Errorf("NewDecimal(%d) error = %v", w, err)
		}
	}
	if _, err := NewHex(MaxHexNibbles + 1); !errors.Is(err, ErrInvalidWidth) {
		t.Errorf("NewHex(%d) accepted", MaxHexNibbles+1)
	}
}

func TestRegistryBuiltins(t *testing.T) {
	for _, name := range []string{"adjective", "surname", "noun", "verb", "decimal", "hex"} {
		d, err := Default().New(name, Options{})
		if err != nil {
			t.Errorf("New(%q): %v", name, err)
			continue
		}
		if d.Size() <= 0 {
			t.Errorf("%s size = %d", name, d.Size())
		}
	}

	d, err := Default().New("decimal", Options{Args: []string{"6"}})
	if err != nil || d.Size() != 1000000 {
		t.Errorf("decimal 6 = %v, %v", d, err)
	}
	if _, err := Default().New("decimal", Options{Args: []string{"15", "2"}}); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("two widths error = %v", err)
	}
}

func TestRegistryRejectsUnknownOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"noun", Options{Params: map[string]string{"max-lenght": "3"}}},
		{"noun", Options{Args: []string{"5"}}},
		{"decimal", Options{Args: []string{"4"}, Params: map[string]string{"min-length": "9"}}},
		{"hex", Options{Params: map[string]string{"exact-length": "2"}}},
	}
	for _, tt := range tests {
		if _, err := Default().New(tt.name, tt.opts); !errors.Is(err, ErrInvalidOption) {
			t.Errorf("New(%s, %+v) error = %v, want ErrInvalidOption", tt.name, tt.opts, err)
		}
	}

	if _, err := NewArray(testWords, Options{Params: map[string]string{"colour": "red"}}); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("NewArray with unknown option error = %v, want ErrInvalidOption", err)
	}
}

func TestRegistryUnknown(t *testing.T) {
	_, err := Default().New("pokemon", Options{})
	if !errors.Is(err, ErrUnknownDictionary) {
		t.Errorf("error = %v, want ErrUnknownDictionary", err)
	}
}

type sizedDict struct{ size int }

func (d sizedDict) Size() int                 { return d.size }
func (d sizedDict) Entry(int) (string, error) { return "", nil }
func (d sizedDict) Lookup(string) (int, bool) { return 0, false }
func (d sizedDict) MaxEntryLen() int          { return 0 }

func TestRegistryInvalidSize(t *testing.T) {
	r := NewRegistry()
	r.Register("zero", func(Options) (Dictionary, error) { return sizedDict{0}, nil }, RegisterOptions{})
	r.Register("nil", func(Options) (Dictionary, error) { return nil, nil }, RegisterOptions{})

	for _, name := range []string{"zero", "nil"} {
		if _, err := r.New(name, Options{}); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("New(%q) error = %v, want ErrInvalidSize", name, err)
		}
	}
}

func TestRegistryUnhashSafe(t *testing.T) {
	r := NewRegistry()
	r.RegisterWords("fruit", []string{"apple", "Apple", "pear"}, RegisterOptions{UnhashSafe: true})

	d, err := r.New("fruit", Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if d.Size() != 2 {
		t.Errorf("Size() = %d, want 2", d.Size())
	}
}

func TestArrayFactoryCache(t *testing.T) {
	f := ArrayFactory(testWords)
	opts := Options{Params: map[string]string{"max-length": "4"}}

	a, err := f(opts)
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	b, err := f(opts)
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if diff := cmp.Diff(a.(*Array).Words(), b.(*Array).Words()); diff != "" {
		t.Errorf("cached instance differs:\n%s", diff)
	}

	chain, _ := transform.Default().Resolve([]string{"caps"})
	c, err := f(Options{Params: opts.Params, Transforms: chain})
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if w, _ := c.Entry(0); w != "FROG" {
		t.Errorf("transformed entry = %q, want FROG", w)
	}
	if w, _ := a.Entry(0); w != "frog" {
		t.Errorf("cache was mutated by a transform: %q", w)
	}
}

func TestReadWords(t *testing.T) {
	in := "# animals\nfrog\n\n  bear  \r\n#skip\ntree\n"
	words, err := ReadWords(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadWords: %v", err)
	}
	if diff := cmp.Diff([]string{"frog", "bear", "tree"}, words); diff != "" {
		t.Errorf("words mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterDir(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "animals.txt"), []byte("frog\nbear\n"), 0600)
	os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored\n"), 0600)
	os.WriteFile(filepath.Join(dir, ".hidden.txt"), []byte("ignored\n"), 0600)

	r := NewRegistry()
	names, err := r.RegisterDir(dir, RegisterOptions{})
	if err != nil {
		t.Fatalf("RegisterDir: %v", err)
	}
	if diff := cmp.Diff([]string{"animals"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	d, err := r.New("animals", Options{})
	if err != nil || d.Size() != 2 {
		t.Errorf("animals = %v, %v", d, err)
	}

	if names, err := r.RegisterDir(filepath.Join(dir, "missing"), RegisterOptions{}); err != nil || names != nil {
		t.Errorf("missing dir = %v, %v", names, err)
	}
}

func TestWatcherHandle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "colors.txt")
	os.WriteFile(path, []byte("red\ngreen\n"), 0600)

	r := NewRegistry()
	w, err := NewWatcher(r, dir, RegisterOptions{})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	var changed []string
	w.OnChange(func(name string) { changed = append(changed, name) })

	if d, err := r.New("colors", Options{}); err != nil || d.Size() != 2 {
		t.Fatalf("initial colors = %v, %v", d, err)
	}

	os.WriteFile(path, []byte("red\ngreen\nblue\n"), 0600)
	w.handle(fsnotify.Event{Name: path, Op: fsnotify.Write})
	if d, err := r.New("colors", Options{}); err != nil || d.Size() != 3 {
		t.Errorf("reloaded colors = %v, %v", d, err)
	}

	// an empty rewrite keeps the previous list
	os.WriteFile(path, nil, 0600)
	w.handle(fsnotify.Event{Name: path, Op: fsnotify.Write})
	if d, err := r.New("colors", Options{}); err != nil || d.Size() != 3 {
		t.Errorf("colors after empty write = %v, %v", d, err)
	}

	w.handle(fsnotify.Event{Name: path, Op: fsnotify.Remove})
	if r.Has("colors") {
		t.Error("colors still registered after remove")
	}

	if diff := cmp.Diff([]string{"colors", "colors"}, changed); diff != "" {
		t.Errorf("change callbacks mismatch (-want +got):\n%s", diff)
	}
}

func TestWatcherRemoveRestoresShadowed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "noun.txt")
	os.WriteFile(path, []byte("red\ngreen\n"), 0600)

	builtin, err := Default().New("noun", Options{})
	if err != nil {
		t.Fatalf("builtin noun: %v", err)
	}

	r := Default().Clone()
	w, err := NewWatcher(r, dir, RegisterOptions{})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if d, err := r.New("noun", Options{}); err != nil || d.Size() != 2 {
		t.Fatalf("shadowed noun = %v, %v", d, err)
	}

	os.Remove(path)
	w.handle(fsnotify.Event{Name: path, Op: fsnotify.Remove})
	d, err := r.New("noun", Options{})
	if err != nil {
		t.Fatalf("noun after remove: %v", err)
	}
	if d.Size() != builtin.Size() {
		t.Errorf("noun size after remove = %d, want built-in %d", d.Size(), builtin.Size())
	}
}

func TestRegistryRestore(t *testing.T) {
	base := NewRegistry()
	base.RegisterWords("colors", []string{"red"}, RegisterOptions{})

	r := base.Clone()
	r.RegisterWords("colors", []string{"red", "green"}, RegisterOptions{})
	r.RegisterWords("shapes", []string{"square"}, RegisterOptions{})

	r.Restore("colors", base)
	r.Restore("shapes", base)

	if d, err := r.New("colors", Options{}); err != nil || d.Size() != 1 {
		t.Errorf("restored colors = %v, %v", d, err)
	}
	if r.Has("shapes") {
		t.Error("shapes still registered, base never had it")
	}
}
