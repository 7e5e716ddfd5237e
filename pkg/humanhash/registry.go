package humanhash

import (
	"github.com/getcreddy/humanhash/pkg/dict"
	"github.com/getcreddy/humanhash/pkg/transform"
)

// RegisterDictionary adds a dictionary to dict.Default(). Hashers built
// afterwards without WithDictionaries can use it.
func RegisterDictionary(name string, factory dict.Factory, opts dict.RegisterOptions) error {
	return dict.Default().Register(name, factory, opts)
}

// RegisterWords adds a fixed word list to dict.Default().
func RegisterWords(name string, words []string, opts dict.RegisterOptions) error {
	return dict.Default().RegisterWords(name, words, opts)
}

// RegisterTransform adds a transform to transform.Default(). undo may be nil,
// in which case formats using the transform still encode but do not validate.
func RegisterTransform(name string, apply, undo transform.Func) error {
	return transform.Default().Register(name, apply, undo)
}
