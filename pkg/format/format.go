// Package format compiles placeholder templates such as
// "{{adjective}}-{{noun caps}}-{{decimal 4}}" into a static slot table.
package format

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/getcreddy/humanhash/pkg/transform"
)

const (
	openMarker  = "{{"
	closeMarker = "}}"
)

var ErrMalformedTemplate = errors.New("malformed template")

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// Resolver reports whether a transform name exists.
type Resolver interface {
	Has(name string) bool
}

// Slot is one placeholder occurrence.
type Slot struct {
	Dictionary string
	Transforms []string
	// Args are bare integer tokens, e.g. the 6 in {{decimal 6}}.
	Args []string
	// Params are key=value tokens, e.g. max-length=5.
	Params map[string]string
}

// Format is a compiled template. It is never mutated after Compile.
type Format struct {
	Template   string
	Prefix     string
	Separators []string
	Suffix     string
	Slots      []Slot
	// Adjacent[i] is true when slot i and i+1 had nothing at all between them.
	Adjacent []bool
}

// Compile parses template. Transform tokens are checked against transforms;
// a nil Resolver means transform.Default().
func Compile(template string, transforms Resolver) (*Format, error) {
	if transforms == nil {
		transforms = transform.Default()
	}

	f := &Format{Template: template}

	var lit strings.Builder
	comment := false
	pos := 0
	for {
		i := strings.Index(template[pos:], openMarker)
		if i < 0 {
			lit.WriteString(template[pos:])
			break
		}
		lit.WriteString(template[pos : pos+i])
		start := pos + i
		inner := start + len(openMarker)

		if strings.HasPrefix(template[inner:], "!--") {
			end := strings.Index(template[inner+3:], "--"+closeMarker)
			if end < 0 {
				return nil, syntaxError(start, "unterminated comment")
			}
			pos = inner + 3 + end + 2 + len(closeMarker)
			comment = true
			continue
		}

		end := strings.Index(template[inner:], closeMarker)
		if end < 0 {
			return nil, syntaxError(start, "unterminated placeholder")
		}
		body := template[inner : inner+end]
		pos = inner + end + len(closeMarker)

		if strings.HasPrefix(body, "!") {
			comment = true
			continue
		}
		if strings.Contains(body, openMarker) {
			return nil, syntaxError(start, "nested placeholder")
		}

		slot, err := parseSlot(body, transforms, start)
		if err != nil {
			return nil, err
		}

		if len(f.Slots) == 0 {
			f.Prefix = lit.String()
		} else {
			f.Separators = append(f.Separators, lit.String())
			f.Adjacent = append(f.Adjacent, lit.Len() == 0 && !comment)
		}
		f.Slots = append(f.Slots, slot)
		lit.Reset()
		comment = false
	}

	if len(f.Slots) == 0 {
		f.Prefix = lit.String()
	} else {
		f.Suffix = lit.String()
	}
	return f, nil
}

func parseSlot(body string, transforms Resolver, offset int) (Slot, error) {
	tokens := strings.Fields(body)
	if len(tokens) == 0 {
		return Slot{}, syntaxError(offset, "empty placeholder")
	}
	if !namePattern.MatchString(tokens[0]) {
		return Slot{}, syntaxError(offset, fmt.Sprintf("invalid dictionary name %q", tokens[0]))
	}

	slot := Slot{Dictionary: tokens[0]}
	for _, tok := range tokens[1:] {
		if _, err := strconv.Atoi(tok); err == nil {
			slot.Args = append(slot.Args, tok)
			continue
		}

		if key, value, ok := strings.Cut(tok, "="); ok {
			if key == "" || value == "" {
				return Slot{}, syntaxError(offset, fmt.Sprintf("option %q needs a key and a value", tok))
			}
			if slot.Params == nil {
				slot.Params = make(map[string]string)
			}
			if _, dup := slot.Params[key]; dup {
				return Slot{}, syntaxError(offset, fmt.Sprintf("option %q given twice", key))
			}
			slot.Params[key] = value
			continue
		}

		if !transforms.Has(tok) {
			return Slot{}, fmt.Errorf("%w: %q in placeholder at offset %d", transform.ErrUnknownTransform, tok, offset)
		}
		slot.Transforms = append(slot.Transforms, tok)
	}
	return slot, nil
}

func syntaxError(offset int, msg string) error {
	return fmt.Errorf("%w at offset %d: %s", ErrMalformedTemplate, offset, msg)
}

// Literals returns every literal piece of the format: prefix, separators and
// suffix, skipping empty ones.
func (f *Format) Literals() []string {
	var out []string
	for _, s := range append(append([]string{f.Prefix}, f.Separators...), f.Suffix) {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (f *Format) String() string {
	return f.Template
}
