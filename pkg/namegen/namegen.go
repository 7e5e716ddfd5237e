// Package namegen generates Docker-style human-readable identifiers.
// Format: adjective_surname_hex (e.g., "brave_turing_a7f")
package namegen

import (
	"fmt"
	"math/big"

	"github.com/getcreddy/humanhash/pkg/humanhash"
	"github.com/getcreddy/humanhash/pkg/source"
)

// Template is the format every identifier follows.
const Template = "{{adjective}}_{{surname}}_{{hex 3}}"

// hasher is unhash-safe so surnames like berners_lee cannot collide with the
// separator.
var hasher = func() *humanhash.Hasher {
	h, err := humanhash.New(Template, humanhash.WithUnhashSafe(true), humanhash.WithValidation(true))
	if err != nil {
		panic(fmt.Sprintf("namegen: %v", err))
	}
	return h
}()

// Generate creates a random human-readable identifier.
// With 63 adjectives × 185 surnames × 4096 suffixes = ~48 million combinations
func Generate() string {
	id, err := hasher.Random()
	if err != nil {
		// crypto/rand failing leaves nothing better to return
		return ""
	}
	return id
}

// GenerateWithPrefix creates an identifier with a custom prefix.
// Format: prefix_adjective_surname_hex (e.g., "enr_brave_turing_a7f")
func GenerateWithPrefix(prefix string) string {
	if prefix == "" {
		return Generate()
	}
	return prefix + "_" + Generate()
}

// FromSeed derives the identifier of seed. The same seed always yields the
// same identifier.
func FromSeed(seed string) (string, error) {
	return hasher.HashString(seed, source.WithDigest("sha256"))
}

// Index returns the position of id among all identifiers, the inverse of
// encoding that integer.
func Index(id string) (*big.Int, error) {
	return hasher.DecodeInt(id)
}

// Combinations is the number of distinct identifiers.
func Combinations() *big.Int {
	return hasher.Entropy()
}
