package humanhash

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/getcreddy/humanhash/pkg/source"
)

// Encode consumes src, one divmod per slot, and renders the words. src must not
// be reused afterwards.
func (h *Hasher) Encode(src *source.Source) (string, error) {
	var b strings.Builder
	b.WriteString(h.format.Prefix)

	for i, s := range h.slots {
		idx, err := src.ExtractInt(s.dict.Size())
		if err != nil {
			return "", slotError(PhaseEncode, s, "", err)
		}
		word, err := h.word(s, idx)
		if err != nil {
			return "", slotError(PhaseEncode, s, "", err)
		}

		if i > 0 {
			b.WriteString(h.format.Separators[i-1])
		}
		b.WriteString(word)
	}

	if len(h.slots) > 0 {
		b.WriteString(h.format.Suffix)
	}
	return b.String(), nil
}

// Source builds a Source from input, applying the Hasher digest and salt
// unless opts override them.
func (h *Hasher) Source(input any, opts ...source.Option) (*source.Source, error) {
	src, err := source.New(input, h.sourceOptions(opts)...)
	if err != nil {
		return nil, &Error{Phase: PhaseEncode, Slot: -1, Err: err}
	}
	return src, nil
}

// Hash encodes the Source built from input.
func (h *Hasher) Hash(input any, opts ...source.Option) (string, error) {
	src, err := h.Source(input, opts...)
	if err != nil {
		return "", err
	}
	return h.Encode(src)
}

// HashString hashes the bytes of s.
func (h *Hasher) HashString(s string, opts ...source.Option) (string, error) {
	return h.Hash(s, opts...)
}

// HashBytes hashes b.
func (h *Hasher) HashBytes(b []byte, opts ...source.Option) (string, error) {
	return h.Hash(b, opts...)
}

// Random encodes fresh random bytes. Eight bytes more than the entropy needs are
// read so the modulo bias is negligible.
func (h *Hasher) Random() (string, error) {
	src, err := source.Random(h.ByteLen() + 8)
	if err != nil {
		return "", &Error{Phase: PhaseEncode, Slot: -1, Err: err}
	}
	return h.Encode(src)
}

// word resolves index to its output text, applying the slot transforms when the
// dictionary does not carry them already.
func (h *Hasher) word(s *slot, index int) (string, error) {
	w, err := s.dict.Entry(index)
	if err != nil {
		return "", fmt.Errorf("%w: index %d: %w", ErrMalformedEntry, index, err)
	}
	if !utf8.ValidString(w) {
		h.logger.Warn("dictionary returned invalid UTF-8, coercing",
			"slot", s.index, "dictionary", s.spec.Dictionary, "index", index)
		w = strings.ToValidUTF8(w, string(utf8.RuneError))
	}
	if s.pretransformed || len(s.chain) == 0 {
		return w, nil
	}

	out := s.chain.Apply(w)
	if !utf8.ValidString(out) {
		h.logger.Warn("transform returned invalid UTF-8, coercing",
			"slot", s.index, "dictionary", s.spec.Dictionary, "transforms", s.spec.Transforms)
		out = strings.ToValidUTF8(out, string(utf8.RuneError))
	}
	return out, nil
}
