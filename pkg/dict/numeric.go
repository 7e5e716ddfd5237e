package dict

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultWidth is the width used by {{decimal}} and {{hex}}.
	DefaultWidth = 4
	// MaxDecimalDigits is the widest decimal dictionary whose size fits in an int.
	MaxDecimalDigits = 18
	// MaxHexNibbles is the widest hex dictionary whose size fits in an int.
	MaxHexNibbles = 15

	decimalAlphabet = "0123456789"
	hexAlphabet     = "0123456789abcdef"
)

// Numeric is a computed dictionary of fixed-width zero-padded numbers.
type Numeric struct {
	base  int
	width int
	size  int
}

var _ ClosedAlphabet = (*Numeric)(nil)

// NewDecimal returns the dictionary 0..10^digits-1.
func NewDecimal(digits int) (*Numeric, error) {
	return newNumeric(10, digits, MaxDecimalDigits)
}

// NewHex returns the dictionary 0..16^nibbles-1 in lowercase hex.
func NewHex(nibbles int) (*Numeric, error) {
	return newNumeric(16, nibbles, MaxHexNibbles)
}

func newNumeric(base, width, maxWidth int) (*Numeric, error) {
	if width < 1 || width > maxWidth {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidWidth, width, maxWidth)
	}
	size := 1
	for i := 0; i < width; i++ {
		size *= base
	}
	return &Numeric{base: base, width: width, size: size}, nil
}

func (n *Numeric) Size() int {
	return n.size
}

func (n *Numeric) Entry(index int) (string, error) {
	if index < 0 || index >= n.size {
		return "", fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, n.size)
	}
	s := strconv.FormatInt(int64(index), n.base)
	if pad := n.width - len(s); pad > 0 {
		s = strings.Repeat("0", pad) + s
	}
	return s, nil
}

func (n *Numeric) Lookup(word string) (int, bool) {
	if len(word) != n.width {
		return 0, false
	}
	alphabet := n.Alphabet()
	for i := 0; i < len(word); i++ {
		if strings.IndexByte(alphabet, word[i]) < 0 {
			return 0, false
		}
	}
	v, err := strconv.ParseInt(word, n.base, 64)
	if err != nil || v >= int64(n.size) {
		return 0, false
	}
	return int(v), true
}

func (n *Numeric) MaxEntryLen() int {
	return n.width
}

func (n *Numeric) Alphabet() string {
	if n.base == 16 {
		return hexAlphabet
	}
	return decimalAlphabet
}

func (n *Numeric) Width() int {
	return n.width
}
