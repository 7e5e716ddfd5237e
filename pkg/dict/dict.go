// Package dict defines the dictionaries that placeholders in a format draw
// their words from.
package dict

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/getcreddy/humanhash/pkg/transform"
)

var (
	ErrUnknownDictionary = errors.New("unknown dictionary")
	ErrEmptyDictionary   = errors.New("dictionary is empty")
	ErrInvalidSize       = errors.New("invalid dictionary size")
	ErrInvalidWidth      = errors.New("invalid width")
	ErrInvalidOption     = errors.New("invalid dictionary option")
	ErrIndexOutOfRange   = errors.New("index out of range")
)

// Dictionary is an indexed list of words.
type Dictionary interface {
	// Size is the number of entries. It must be positive and must not change.
	Size() int
	// Entry returns the word at index, 0 <= index < Size().
	Entry(index int) (string, error)
	// Lookup returns the index of word.
	Lookup(word string) (int, bool)
	// MaxEntryLen is the length in bytes of the longest entry.
	MaxEntryLen() int
}

// TransformAware is implemented by dictionaries that apply the slot
// transforms to their entries when they are built. Entry and Lookup then work
// on transformed text and callers must not transform again.
type TransformAware interface {
	AppliesTransforms() bool
}

// ClosedAlphabet is implemented by dictionaries whose entries are all Width()
// runes drawn from Alphabet().
type ClosedAlphabet interface {
	Alphabet() string
	Width() int
}

// Options are the per-slot settings handed to a Factory.
type Options struct {
	// Args are the bare integer tokens of the placeholder, e.g. {{decimal 6}}.
	Args []string
	// Params are the key=value tokens, e.g. {{noun max-length=5}}.
	Params map[string]string
	// Transforms is the slot pipeline. Dictionaries that implement
	// TransformAware apply it themselves.
	Transforms transform.Chain
	// Safe requests unhash-safe normalisation of the entries.
	Safe bool
}

// Int parses Params[key] as a positive integer.
func (o Options) Int(key string) (int, bool, error) {
	v, ok := o.Params[key]
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, true, fmt.Errorf("%w: %s=%q must be a positive integer", ErrInvalidOption, key, v)
	}
	return n, true, nil
}

// Only fails with ErrInvalidOption when Params holds a key outside keys.
func (o Options) Only(keys ...string) error {
	var unknown []string
	for key := range o.Params {
		known := false
		for _, k := range keys {
			if key == k {
				known = true
				break
			}
		}
		if !known {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("%w: unknown option %q", ErrInvalidOption, unknown[0])
}

// Width parses the single optional integer argument, returning def when absent.
func (o Options) Width(def int) (int, error) {
	switch len(o.Args) {
	case 0:
		return def, nil
	case 1:
		n, err := strconv.Atoi(o.Args[0])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidWidth, o.Args[0])
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: expected at most one width argument, got %d", ErrInvalidOption, len(o.Args))
	}
}

// Check verifies the size of a freshly built dictionary.
func Check(d Dictionary) error {
	if d == nil {
		return fmt.Errorf("%w: factory returned no dictionary", ErrInvalidSize)
	}
	if n := d.Size(); n <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}
	return nil
}
