package source

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// Input kinds accepted by ParseInput.
const (
	KindString = "string"
	KindHex    = "hex"
	KindInt    = "int"
	KindUUID   = "uuid"
)

// ParseInput turns text given on a command line or in a request into a value
// New accepts.
func ParseInput(kind, text string) (any, error) {
	switch kind {
	case "", KindString:
		return text, nil
	case KindHex:
		t := strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X")
		if len(t)%2 == 1 {
			t = "0" + t
		}
		b, err := hex.DecodeString(t)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSourceType, err)
		}
		return b, nil
	case KindInt:
		v, ok := new(big.Int).SetString(text, 0)
		if !ok || v.Sign() < 0 {
			return nil, fmt.Errorf("%w: %q is not a non-negative integer", ErrInvalidSourceType, text)
		}
		return v, nil
	case KindUUID:
		id, err := uuid.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSourceType, err)
		}
		return id, nil
	default:
		return nil, fmt.Errorf("%w: unknown input kind %q", ErrInvalidSourceType, kind)
	}
}
