// Package humanhash maps integers to human-readable strings of dictionary words
// and back.
//
// A Hasher is built from a template such as "{{adjective}}-{{noun}}-{{decimal 4}}".
// Every placeholder is a slot bound to one dictionary instance. Encoding
// extracts one index per slot from a big integer by repeated divmod; decoding
// splits the text back into words and folds their indices into the same
// integer.
//
//	h, err := humanhash.New("{{adjective}}-{{noun}}")
//	label, err := h.HashString("alice@example.com", source.WithDigest("sha256"))
//	value, err := h.Decode(label)
//
// A Hasher is safe for concurrent use once New returns.
package humanhash

import (
	"math/big"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/hashicorp/go-hclog"

	"github.com/getcreddy/humanhash/pkg/dict"
	"github.com/getcreddy/humanhash/pkg/format"
	"github.com/getcreddy/humanhash/pkg/source"
	"github.com/getcreddy/humanhash/pkg/transform"
)

// Hasher encodes and decodes one compiled format.
type Hasher struct {
	format  *format.Format
	slots   []*slot
	entropy *big.Int
	matcher *regexp.Regexp

	dicts      *dict.Registry
	transforms *transform.Registry
	unhashSafe bool
	validate   bool
	digest     string
	salt       []byte
	logger     hclog.Logger

	validateOnce sync.Once
	validateErr  error
}

// slot is a placeholder bound to its dictionary instance.
type slot struct {
	index          int
	spec           format.Slot
	dict           dict.Dictionary
	size           *big.Int
	chain          transform.Chain
	pretransformed bool
	// maxLen bounds the byte length of a word during backtracking. The
	// validator replaces the bind-time estimate with the exact value.
	maxLen int
}

// Option configures a Hasher.
type Option func(*Hasher)

// WithDictionaries resolves dictionary names against reg instead of dict.Default().
func WithDictionaries(reg *dict.Registry) Option {
	return func(h *Hasher) {
		h.dicts = reg
	}
}

// WithTransforms resolves transform names against reg instead of transform.Default().
func WithTransforms(reg *transform.Registry) Option {
	return func(h *Hasher) {
		h.transforms = reg
	}
}

// WithUnhashSafe applies unhash-safe normalisation to every dictionary of the format.
func WithUnhashSafe(safe bool) Option {
	return func(h *Hasher) {
		h.unhashSafe = safe
	}
}

// WithValidation runs the validator in New and fails construction when the
// format cannot be decoded.
func WithValidation(validate bool) Option {
	return func(h *Hasher) {
		h.validate = validate
	}
}

// WithDigest sets the default digest applied to Hash input.
func WithDigest(alg string) Option {
	return func(h *Hasher) {
		h.digest = alg
	}
}

// WithSalt sets the default salt used with the digest.
func WithSalt(salt []byte) Option {
	return func(h *Hasher) {
		h.salt = salt
	}
}

// WithLogger sets the logger used for degraded-output warnings and decode tracing.
func WithLogger(logger hclog.Logger) Option {
	return func(h *Hasher) {
		h.logger = logger
	}
}

// New compiles template and builds one dictionary per placeholder.
func New(template string, opts ...Option) (*Hasher, error) {
	h := &Hasher{
		dicts:      dict.Default(),
		transforms: transform.Default(),
		logger:     hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}

	f, err := format.Compile(template, h.transforms)
	if err != nil {
		return nil, &Error{Phase: PhaseCompile, Slot: -1, Err: err}
	}
	h.format = f

	h.entropy = big.NewInt(1)
	for i, spec := range f.Slots {
		s, err := h.bind(i, spec)
		if err != nil {
			return nil, err
		}
		h.slots = append(h.slots, s)
		h.entropy.Mul(h.entropy, s.size)
	}

	h.matcher = compileMatcher(f)

	if h.validate {
		if err := h.Validate(); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hasher) bind(i int, spec format.Slot) (*slot, error) {
	s := &slot{index: i, spec: spec}

	chain, err := h.transforms.Resolve(spec.Transforms)
	if err != nil {
		return nil, slotError(PhaseBind, s, "", err)
	}
	s.chain = chain

	d, err := h.dicts.New(spec.Dictionary, dict.Options{
		Args:       spec.Args,
		Params:     spec.Params,
		Transforms: chain,
		Safe:       h.unhashSafe,
	})
	if err != nil {
		return nil, slotError(PhaseBind, s, "", err)
	}
	s.dict = d
	s.size = big.NewInt(int64(d.Size()))

	if ta, ok := d.(dict.TransformAware); ok && ta.AppliesTransforms() {
		s.pretransformed = true
	}
	s.maxLen = d.MaxEntryLen()
	if !s.pretransformed && len(chain) > 0 {
		// case mappings keep the rune count
		s.maxLen *= utf8.UTFMax
	}
	return s, nil
}

// compileMatcher builds ^prefix(.+)sep(.+)...suffix$ for the direct parse.
func compileMatcher(f *format.Format) *regexp.Regexp {
	if len(f.Slots) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString(`(?s)^`)
	b.WriteString(regexp.QuoteMeta(f.Prefix))
	b.WriteString(`(.+)`)
	for _, sep := range f.Separators {
		b.WriteString(regexp.QuoteMeta(sep))
		b.WriteString(`(.+)`)
	}
	b.WriteString(regexp.QuoteMeta(f.Suffix))
	b.WriteString(`$`)
	return regexp.MustCompile(b.String())
}

// Format returns the compiled template.
func (h *Hasher) Format() *format.Format {
	return h.format
}

// Template returns the template the Hasher was built from.
func (h *Hasher) Template() string {
	return h.format.Template
}

// Slots is the number of placeholders.
func (h *Hasher) Slots() int {
	return len(h.slots)
}

// Entropy is the number of distinct outputs, the product of the dictionary sizes.
func (h *Hasher) Entropy() *big.Int {
	return new(big.Int).Set(h.entropy)
}

// EntropyBits is floor(log2(Entropy())).
func (h *Hasher) EntropyBits() int {
	return h.entropy.BitLen() - 1
}

// EntropyDecimalDigits is the number of decimal digits of Entropy().
func (h *Hasher) EntropyDecimalDigits() int {
	return len(h.entropy.String())
}

// ByteLen is the size of the byte slices returned by Decode: the fewest bytes
// that hold Entropy()-1.
func (h *Hasher) ByteLen() int {
	top := new(big.Int).Sub(h.entropy, big.NewInt(1))
	return (top.BitLen() + 7) / 8
}

// sourceOptions puts the Hasher defaults before the per-call options so the
// latter win.
func (h *Hasher) sourceOptions(opts []source.Option) []source.Option {
	var all []source.Option
	if h.digest != "" {
		all = append(all, source.WithDigest(h.digest))
	}
	if h.salt != nil {
		all = append(all, source.WithSalt(h.salt))
	}
	return append(all, opts...)
}
