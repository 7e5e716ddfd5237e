package humanhash

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/getcreddy/humanhash/pkg/dict"
)

// MaxEnumerable is the largest dictionary the validator walks entry by entry.
// Bigger dictionaries must implement dict.ClosedAlphabet to be decodable.
const MaxEnumerable = 1 << 22

// Validate reports whether every output of the format decodes to exactly one
// value. The verdict is computed once and cached; failures wrap ErrNotUnhashable
// with the reason.
func (h *Hasher) Validate() error {
	h.validateOnce.Do(func() {
		h.validateErr = h.runValidation()
		if h.validateErr != nil {
			h.logger.Debug("format is not decodable", "template", h.format.Template, "reason", h.validateErr)
		}
	})
	return h.validateErr
}

func notUnhashable(s *slot, msg string, args ...any) error {
	e := &Error{
		Phase: PhaseValidate,
		Slot:  -1,
		Err:   fmt.Errorf("%w: %s", ErrNotUnhashable, fmt.Sprintf(msg, args...)),
	}
	if s != nil {
		e.Slot = s.index
		e.Dictionary = s.spec.Dictionary
	}
	return e
}

func (h *Hasher) runValidation() error {
	for i, adjacent := range h.format.Adjacent {
		if adjacent {
			return notUnhashable(nil, "no separator between words %d and %d", i, i+1)
		}
	}
	for i, sep := range h.format.Separators {
		if sep == "" {
			return notUnhashable(nil, "empty separator between words %d and %d", i, i+1)
		}
	}
	for _, s := range h.slots {
		if names := s.chain.Irreversible(); len(names) > 0 {
			return notUnhashable(s, "transform %q has no inverse", names[0])
		}
	}

	literals := h.format.Literals()
	for _, s := range h.slots {
		var err error
		if ca, ok := s.dict.(dict.ClosedAlphabet); ok {
			err = h.checkClosed(s, ca, literals)
		} else {
			err = h.checkEntries(s)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// checkClosed proves the literal and maxLen properties for a fixed-width
// dictionary without enumerating it. A literal can only occur inside a word if
// every rune of it belongs to the alphabet and it is not longer than a word.
// Untransformed entries are distinct by construction; with transforms the
// dictionary is enumerated when small enough, and otherwise the transformed
// alphabet must stay one rune per rune and distinct.
func (h *Hasher) checkClosed(s *slot, ca dict.ClosedAlphabet, literals []string) error {
	transformed := !s.pretransformed && len(s.chain) > 0
	if transformed && s.dict.Size() <= MaxEnumerable {
		return h.checkEntries(s)
	}

	runes := make(map[rune]bool)
	images := make(map[string]rune)
	widest := 1
	for _, r := range ca.Alphabet() {
		runes[r] = true
		if n := utf8.RuneLen(r); n > widest {
			widest = n
		}
		if !transformed {
			continue
		}

		t := s.chain.Apply(string(r))
		if utf8.RuneCountInString(t) != 1 {
			return notUnhashable(s, "transforms map %q to %q, not a single character", r, t)
		}
		key := dict.Normalize(t)
		if prev, dup := images[key]; dup {
			return notUnhashable(s, "transforms make %q and %q duplicate entries", prev, r)
		}
		images[key] = r

		for _, tr := range t {
			runes[tr] = true
			if n := utf8.RuneLen(tr); n > widest {
				widest = n
			}
		}
	}

	for _, lit := range literals {
		if utf8.RuneCountInString(lit) > ca.Width() {
			continue
		}
		inside := true
		for _, r := range lit {
			if !runes[r] {
				inside = false
				break
			}
		}
		if inside {
			return notUnhashable(s, "words may contain literal %q", lit)
		}
	}

	maxLen := ca.Width() * widest
	for _, idx := range []int{0, s.dict.Size() - 1} {
		w, err := h.word(s, idx)
		if err != nil {
			return slotError(PhaseValidate, s, "", err)
		}
		if len(w) > maxLen {
			maxLen = len(w)
		}
	}
	s.maxLen = maxLen
	return nil
}

// checkEntries walks every entry: no empty word, no literal inside a word or
// straddling its edge, no two words with the same normal form, and every word
// looks up to its own index.
func (h *Hasher) checkEntries(s *slot) error {
	size := s.dict.Size()
	if size > MaxEnumerable {
		return notUnhashable(s, "dictionary of %d entries is too large to verify", size)
	}

	// the anchored prefix and suffix cannot shift a boundary, separators can
	var before, after []string
	if s.index > 0 {
		before = nonEmpty(h.format.Separators[s.index-1])
	}
	if s.index < len(h.slots)-1 {
		after = nonEmpty(h.format.Separators[s.index])
	}
	literals := h.format.Literals()

	seen := make(map[string]int, size)
	maxLen := 0
	for i := 0; i < size; i++ {
		w, err := h.word(s, i)
		if err != nil {
			return slotError(PhaseValidate, s, "", err)
		}
		if w == "" {
			return notUnhashable(s, "empty entry at index %d", i)
		}
		for _, lit := range literals {
			if strings.Contains(w, lit) {
				return notUnhashable(s, "word %q contains literal %q", w, lit)
			}
		}
		for _, lit := range after {
			if strings.Index(w+lit, lit) != len(w) {
				return notUnhashable(s, "literal %q overlaps word %q", lit, w)
			}
		}
		for _, lit := range before {
			if strings.Contains((lit + w)[1:], lit) {
				return notUnhashable(s, "literal %q overlaps word %q", lit, w)
			}
		}

		key := dict.Normalize(w)
		if j, dup := seen[key]; dup {
			return notUnhashable(s, "duplicate entries %d and %d (%q)", j, i, w)
		}
		seen[key] = i

		j, ok, err := h.lookup(s, w)
		if err != nil {
			return slotError(PhaseValidate, s, w, err)
		}
		if !ok || j != i {
			return notUnhashable(s, "word %q at index %d does not look up to itself", w, i)
		}

		if len(w) > maxLen {
			maxLen = len(w)
		}
	}
	s.maxLen = maxLen
	return nil
}

func nonEmpty(lit string) []string {
	if lit == "" {
		return nil
	}
	return []string{lit}
}
