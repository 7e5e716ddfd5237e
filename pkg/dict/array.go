package dict

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Array is a dictionary backed by a word list. Its entries are stored already
// transformed.
type Array struct {
	words  []string
	index  map[string]int
	maxLen int
}

var _ TransformAware = (*Array)(nil)

// NewArray filters words by the length options, normalises them when
// opts.Safe is set and applies opts.Transforms to every remaining entry.
func NewArray(words []string, opts Options) (*Array, error) {
	if err := checkArrayOptions(opts); err != nil {
		return nil, err
	}
	filtered, err := filterLength(words, opts)
	if err != nil {
		return nil, err
	}
	return newArray(filtered, opts)
}

func newArray(words []string, opts Options) (*Array, error) {
	if opts.Safe {
		words = SafeWords(words)
	}
	if len(words) == 0 {
		return nil, ErrEmptyDictionary
	}

	a := &Array{
		words: make([]string, len(words)),
		index: make(map[string]int, len(words)),
	}
	for i, w := range words {
		w = opts.Transforms.Apply(w)
		a.words[i] = w
		if _, dup := a.index[w]; !dup {
			a.index[w] = i
		}
		if len(w) > a.maxLen {
			a.maxLen = len(w)
		}
	}
	return a, nil
}

func (a *Array) Size() int {
	return len(a.words)
}

func (a *Array) Entry(index int) (string, error) {
	if index < 0 || index >= len(a.words) {
		return "", fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(a.words))
	}
	return a.words[index], nil
}

func (a *Array) Lookup(word string) (int, bool) {
	i, ok := a.index[word]
	return i, ok
}

func (a *Array) MaxEntryLen() int {
	return a.maxLen
}

func (a *Array) AppliesTransforms() bool {
	return true
}

// Words returns a copy of the entries.
func (a *Array) Words() []string {
	return append([]string(nil), a.words...)
}

// lengthParams are the options word lists accept.
var lengthParams = []string{"min-length", "max-length", "exact-length"}

func checkArrayOptions(opts Options) error {
	if len(opts.Args) > 0 {
		return fmt.Errorf("%w: word lists take no width, got %q", ErrInvalidOption, opts.Args[0])
	}
	return opts.Only(lengthParams...)
}

func filterLength(words []string, opts Options) ([]string, error) {
	minLen, hasMin, err := opts.Int("min-length")
	if err != nil {
		return nil, err
	}
	maxLen, hasMax, err := opts.Int("max-length")
	if err != nil {
		return nil, err
	}
	exactLen, hasExact, err := opts.Int("exact-length")
	if err != nil {
		return nil, err
	}
	if !hasMin && !hasMax && !hasExact {
		return words, nil
	}

	out := make([]string, 0, len(words))
	for _, w := range words {
		n := utf8.RuneCountInString(w)
		if hasMin && n < minLen {
			continue
		}
		if hasMax && n > maxLen {
			continue
		}
		if hasExact && n != exactLen {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

// Normalize strips whitespace, hyphens and underscores and lower-cases the
// result. Two words with the same normal form cannot be told apart reliably.
func Normalize(w string) string {
	return strings.ToLower(stripSeparators(w))
}

func stripSeparators(w string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			return -1
		}
		return r
	}, w)
}

// SafeWords strips separator characters from every word and drops empty words
// and case-insensitive duplicates, keeping the first occurrence.
func SafeWords(words []string) []string {
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		stripped := stripSeparators(w)
		if stripped == "" {
			continue
		}
		key := strings.ToLower(stripped)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, stripped)
	}
	return out
}
