package source

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"sort"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
)

var ErrUnknownDigest = errors.New("unknown digest algorithm")

var digests = map[string]func() hash.Hash{
	"md5":        md5.New,
	"sha1":       sha1.New,
	"sha224":     sha256.New224,
	"sha256":     sha256.New,
	"sha384":     sha512.New384,
	"sha512":     sha512.New,
	"sha512-256": sha512.New512_256,
	"sha3-256":   sha3.New256,
	"sha3-512":   sha3.New512,
	"blake2b-256": func() hash.Hash {
		h, _ := blake2b.New256(nil)
		return h
	},
	"blake2b-512": func() hash.Hash {
		h, _ := blake2b.New512(nil)
		return h
	},
	"blake2s-256": func() hash.Hash {
		h, _ := blake2s.New256(nil)
		return h
	},
}

// Digests lists the supported algorithm names.
func Digests() []string {
	names := make([]string, 0, len(digests))
	for name := range digests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Digest hashes salt followed by data with the named algorithm.
func Digest(alg string, salt, data []byte) ([]byte, error) {
	newHash, ok := digests[alg]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDigest, alg)
	}
	h := newHash()
	h.Write(salt)
	h.Write(data)
	return h.Sum(nil), nil
}
