package humanhash

import (
	"errors"
	"strconv"
	"strings"

	"github.com/getcreddy/humanhash/pkg/dict"
	"github.com/getcreddy/humanhash/pkg/format"
	"github.com/getcreddy/humanhash/pkg/source"
	"github.com/getcreddy/humanhash/pkg/transform"
)

// Phase says where an error happened.
type Phase string

const (
	PhaseCompile  Phase = "compile"  // template parsing
	PhaseBind     Phase = "bind"     // dictionary construction
	PhaseEncode   Phase = "encode"   // value to words
	PhaseValidate Phase = "validate" // reversibility checks
	PhaseDecode   Phase = "decode"   // words to value
)

var (
	ErrMalformedEntry  = errors.New("malformed dictionary entry")
	ErrNotUnhashable   = errors.New("format is not unhashable")
	ErrUnparsableInput = errors.New("unparsable input")
	ErrWordNotFound    = errors.New("word not found")
)

// Errors of the packages the hasher is built from.
var (
	ErrInvalidSourceType = source.ErrInvalidSourceType
	ErrUnknownDictionary = dict.ErrUnknownDictionary
	ErrUnknownTransform  = transform.ErrUnknownTransform
	ErrEmptyDictionary   = dict.ErrEmptyDictionary
	ErrInvalidSize       = dict.ErrInvalidSize
	ErrIndexOutOfRange   = dict.ErrIndexOutOfRange
	ErrMalformedTemplate = format.ErrMalformedTemplate
)

// Error carries the slot context of a failure. Slot is -1 when the failure is
// not tied to one placeholder.
type Error struct {
	Phase      Phase
	Slot       int
	Dictionary string
	Word       string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")

	if e.Slot >= 0 {
		b.WriteString("slot ")
		b.WriteString(strconv.Itoa(e.Slot))
		if e.Dictionary != "" {
			b.WriteString(" (")
			b.WriteString(e.Dictionary)
			b.WriteByte(')')
		}
		b.WriteString(": ")
	}

	if e.Err != nil {
		b.WriteString(e.Err.Error())
	}
	if e.Word != "" {
		b.WriteString(": ")
		b.WriteString(strconv.Quote(e.Word))
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func slotError(phase Phase, s *slot, word string, err error) error {
	return &Error{
		Phase:      phase,
		Slot:       s.index,
		Dictionary: s.spec.Dictionary,
		Word:       word,
		Err:        err,
	}
}
