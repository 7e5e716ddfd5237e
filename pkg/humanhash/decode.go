package humanhash

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/getcreddy/humanhash/pkg/dict"
)

// Decode returns the value text was encoded from as ByteLen() big-endian bytes.
func (h *Hasher) Decode(text string) ([]byte, error) {
	v, err := h.DecodeInt(text)
	if err != nil {
		return nil, err
	}
	return v.FillBytes(make([]byte, h.ByteLen())), nil
}

// DecodeInt returns the value text was encoded from. The format has to pass
// Validate first.
//
// Text is first split with a single anchored regular expression. When a word
// of that split is unknown the parser falls back to a depth-first search over
// word boundaries, which costs up to O(maxWordLen^slots) on pathological
// dictionaries.
func (h *Hasher) DecodeInt(text string) (*big.Int, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}

	if len(h.slots) == 0 {
		if text != h.format.Prefix {
			return nil, &Error{Phase: PhaseDecode, Slot: -1, Word: text, Err: ErrUnparsableInput}
		}
		return new(big.Int), nil
	}

	indices, err := h.parse(text)
	if err != nil {
		return nil, err
	}
	return h.fold(indices), nil
}

// fold inverts the encoder's divmod sequence: starting from the last slot,
// acc = acc*size + index.
func (h *Hasher) fold(indices []int) *big.Int {
	acc := new(big.Int)
	for i := len(h.slots) - 1; i >= 0; i-- {
		acc.Mul(acc, h.slots[i].size)
		acc.Add(acc, big.NewInt(int64(indices[i])))
	}
	return acc
}

func (h *Hasher) parse(text string) ([]int, error) {
	var directErr error
	if m := h.matcher.FindStringSubmatch(text); m != nil {
		indices, err := h.lookupAll(m[1:])
		if err == nil {
			return indices, nil
		}
		if errors.Is(err, dict.ErrIndexOutOfRange) {
			return nil, err
		}
		directErr = err
		h.logger.Trace("direct split failed, backtracking", "text", text, "error", err)
	}

	indices, ok, err := h.backtrack(text)
	if err != nil {
		return nil, err
	}
	if ok {
		return indices, nil
	}
	if directErr != nil {
		return nil, directErr
	}
	return nil, &Error{Phase: PhaseDecode, Slot: -1, Word: text, Err: ErrUnparsableInput}
}

func (h *Hasher) lookupAll(words []string) ([]int, error) {
	indices := make([]int, len(h.slots))
	for i, s := range h.slots {
		idx, ok, err := h.lookup(s, words[i])
		if err != nil {
			return nil, slotError(PhaseDecode, s, words[i], err)
		}
		if !ok {
			return nil, slotError(PhaseDecode, s, words[i], ErrWordNotFound)
		}
		indices[i] = idx
	}
	return indices, nil
}

// lookup maps an output word to its index. Dictionaries that do not carry the
// slot transforms get the undone word, and the index is only accepted if it
// renders back to exactly the same text.
func (h *Hasher) lookup(s *slot, word string) (int, bool, error) {
	raw := word
	if !s.pretransformed && len(s.chain) > 0 {
		var ok bool
		if raw, ok = s.chain.Undo(word); !ok {
			return 0, false, nil
		}
	}

	idx, ok := s.dict.Lookup(raw)
	if !ok {
		return 0, false, nil
	}
	if size := s.dict.Size(); idx < 0 || idx >= size {
		return 0, false, fmt.Errorf("%w: lookup of %q returned %d, size is %d", dict.ErrIndexOutOfRange, raw, idx, size)
	}

	if !s.pretransformed && len(s.chain) > 0 {
		w, err := h.word(s, idx)
		if err != nil {
			return 0, false, err
		}
		if w != word {
			return 0, false, nil
		}
	}
	return idx, true, nil
}

// backtrack strips the prefix and suffix and searches for word boundaries slot
// by slot, shortest candidate first. A candidate is accepted when the
// separator follows it (or the text ends, for the last slot) and it looks up.
func (h *Hasher) backtrack(text string) ([]int, bool, error) {
	f := h.format
	if len(text) < len(f.Prefix)+len(f.Suffix) ||
		!strings.HasPrefix(text, f.Prefix) || !strings.HasSuffix(text, f.Suffix) {
		return nil, false, nil
	}
	body := text[len(f.Prefix) : len(text)-len(f.Suffix)]
	last := len(h.slots) - 1
	indices := make([]int, len(h.slots))

	var search func(i, p int) (bool, error)
	search = func(i, p int) (bool, error) {
		s := h.slots[i]
		limit := min(p+s.maxLen, len(body))
		for end := p + 1; end <= limit; end++ {
			if end < len(body) && !utf8.RuneStart(body[end]) {
				continue
			}
			next := 0
			if i == last {
				if end != len(body) {
					continue
				}
			} else {
				sep := f.Separators[i]
				if !strings.HasPrefix(body[end:], sep) {
					continue
				}
				next = end + len(sep)
			}

			idx, ok, err := h.lookup(s, body[p:end])
			if err != nil {
				return false, slotError(PhaseDecode, s, body[p:end], err)
			}
			if !ok {
				continue
			}
			indices[i] = idx
			if i == last {
				return true, nil
			}
			if found, err := search(i+1, next); found || err != nil {
				return found, err
			}
		}
		return false, nil
	}

	found, err := search(0, 0)
	if err != nil || !found {
		return nil, false, err
	}
	return indices, true, nil
}
