// Package source turns raw input into a single big integer that can be consumed
// one bounded index at a time.
package source

import (
	"crypto/rand"
	"errors"
	"fmt"
	"iter"
	"math/big"

	"github.com/google/uuid"
)

// DefaultRandomBytes is how many random bytes New reads when no input is given.
const DefaultRandomBytes = 16

var (
	ErrInvalidSourceType = errors.New("invalid source type")
	ErrInvalidModulus    = errors.New("modulus must be positive")
)

// Source holds the integer being consumed by an encoder. A Source is single use:
// every Extract divides the value down.
type Source struct {
	value *big.Int
	size  int
}

type options struct {
	digest string
	salt   []byte
}

// Option configures how input is preprocessed.
type Option func(*options)

// WithDigest replaces the input with its digest under the named algorithm.
func WithDigest(alg string) Option {
	return func(o *options) {
		o.digest = alg
	}
}

// WithSalt prefixes salt to the input before it is digested. It has no effect
// without WithDigest.
func WithSalt(salt []byte) Option {
	return func(o *options) {
		o.salt = salt
	}
}

// New builds a Source from input. Accepted inputs are nil (random bytes),
// []byte, string, []int, iter.Seq[int], *big.Int and uuid.UUID.
func New(input any, opts ...Option) (*Source, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	b, err := toBytes(input)
	if err != nil {
		return nil, err
	}

	if o.digest != "" {
		b, err = Digest(o.digest, o.salt, b)
		if err != nil {
			return nil, err
		}
	}

	return FromBytes(b), nil
}

// FromBytes reads b as a big-endian unsigned integer.
func FromBytes(b []byte) *Source {
	return &Source{
		value: new(big.Int).SetBytes(b),
		size:  len(b),
	}
}

// FromString uses the UTF-8 bytes of s, so "é" is 0xc3a9.
func FromString(s string) *Source {
	return FromBytes([]byte(s))
}

// FromBigInt copies v, which must not be negative.
func FromBigInt(v *big.Int) (*Source, error) {
	if v == nil || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative or nil integer", ErrInvalidSourceType)
	}
	return &Source{
		value: new(big.Int).Set(v),
		size:  (v.BitLen() + 7) / 8,
	}, nil
}

// FromUint64 is a shortcut for small values.
func FromUint64(v uint64) *Source {
	s, _ := FromBigInt(new(big.Int).SetUint64(v))
	return s
}

// FromUUID uses the 16 bytes of id.
func FromUUID(id uuid.UUID) *Source {
	return FromBytes(id[:])
}

// Random reads n bytes from crypto/rand.
func Random(n int) (*Source, error) {
	if n <= 0 {
		n = DefaultRandomBytes
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return FromBytes(b), nil
}

func toBytes(input any) ([]byte, error) {
	switch v := input.(type) {
	case nil:
		b := make([]byte, DefaultRandomBytes)
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("failed to read random bytes: %w", err)
		}
		return b, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case []int:
		return intsToBytes(func(yield func(int) bool) {
			for _, n := range v {
				if !yield(n) {
					return
				}
			}
		})
	case iter.Seq[int]:
		return intsToBytes(v)
	case *big.Int:
		if v == nil || v.Sign() < 0 {
			return nil, fmt.Errorf("%w: negative or nil integer", ErrInvalidSourceType)
		}
		return v.Bytes(), nil
	case uuid.UUID:
		return v[:], nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidSourceType, input)
	}
}

func intsToBytes(seq iter.Seq[int]) ([]byte, error) {
	var b []byte
	for n := range seq {
		if n < 0 || n > 0xff {
			return nil, fmt.Errorf("%w: value %d at offset %d is not a byte", ErrInvalidSourceType, n, len(b))
		}
		b = append(b, byte(n))
	}
	return b, nil
}

// Extract returns value mod m and divides the value by m.
func (s *Source) Extract(m *big.Int) (*big.Int, error) {
	if m == nil || m.Sign() <= 0 {
		return nil, ErrInvalidModulus
	}
	idx := new(big.Int)
	s.value.DivMod(s.value, m, idx)
	return idx, nil
}

// ExtractInt is Extract for moduli that fit in an int.
func (s *Source) ExtractInt(m int) (int, error) {
	if m <= 0 {
		return 0, ErrInvalidModulus
	}
	idx, err := s.Extract(big.NewInt(int64(m)))
	if err != nil {
		return 0, err
	}
	return int(idx.Int64()), nil
}

// Value returns a copy of the remaining value.
func (s *Source) Value() *big.Int {
	return new(big.Int).Set(s.value)
}

// Len is the number of bytes the source was built from.
func (s *Source) Len() int {
	return s.size
}
