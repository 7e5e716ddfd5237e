package source

import (
	"encoding/hex"
	"errors"
	"iter"
	"math/big"
	"testing"

	"github.com/google/uuid"
)

func TestExtract(t *testing.T) {
	// 0x0539 = 1337 = 1 + 8*(7 + 8*(4 + 8*2))
	s := FromBytes([]byte{0x05, 0x39})

	want := []int{1, 7, 4, 2, 0, 0}
	for i, w := range want {
		got, err := s.ExtractInt(8)
		if err != nil {
			t.Fatalf("ExtractInt: %v", err)
		}
		if got != w {
			t.Errorf("extract %d = %d, want %d", i, got, w)
		}
	}
	if s.Value().Sign() != 0 {
		t.Errorf("value not exhausted: %s", s.Value())
	}
}

func TestExtractDeterministic(t *testing.T) {
	input := []byte("some deterministic input bytes")
	moduli := []int{7, 1000, 8192, 3, 65536, 11}

	a, b := FromBytes(input), FromBytes(input)
	for _, m := range moduli {
		x, _ := a.ExtractInt(m)
		y, _ := b.ExtractInt(m)
		if x != y {
			t.Fatalf("ExtractInt(%d) diverged: %d vs %d", m, x, y)
		}
	}
	if a.Value().Cmp(b.Value()) != 0 {
		t.Errorf("final state diverged")
	}
}

func TestExtractInvalidModulus(t *testing.T) {
	s := FromUint64(10)
	if _, err := s.ExtractInt(0); !errors.Is(err, ErrInvalidModulus) {
		t.Errorf("ExtractInt(0) error = %v, want ErrInvalidModulus", err)
	}
	if _, err := s.Extract(big.NewInt(-3)); !errors.Is(err, ErrInvalidModulus) {
		t.Errorf("Extract(-3) error = %v, want ErrInvalidModulus", err)
	}
}

func TestNewInputs(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	var seq iter.Seq[int] = func(yield func(int) bool) {
		for _, n := range []int{0x01, 0x00} {
			if !yield(n) {
				return
			}
		}
	}

	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"bytes", []byte{0x01, 0x02}, "258"},
		{"string", "hi", "26729"},
		{"utf-8 string", "é", "50089"},
		{"ints", []int{0x01, 0x02}, "258"},
		{"seq", seq, "256"},
		{"bigint", big.NewInt(42), "42"},
		{"uuid", id, new(big.Int).SetBytes(id[:]).String()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.input)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if got := s.Value().String(); got != tt.want {
				t.Errorf("value = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"float", 3.14},
		{"negative int", []int{1, -1}},
		{"wide int", []int{256}},
		{"negative bigint", big.NewInt(-1)},
		{"struct", struct{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.input); !errors.Is(err, ErrInvalidSourceType) {
				t.Errorf("New(%v) error = %v, want ErrInvalidSourceType", tt.input, err)
			}
		})
	}
}

func TestNewRandom(t *testing.T) {
	s, err := New(nil)
	if err != nil {
		t.Fatalf("New(nil): %v", err)
	}
	if s.Len() != DefaultRandomBytes {
		t.Errorf("Len() = %d, want %d", s.Len(), DefaultRandomBytes)
	}
}

func TestDigest(t *testing.T) {
	const input = "this is a very long string that is more than we need"

	tests := []struct {
		alg  string
		want string
	}{
		{"md5", "ef3bd70d77bf400e8c64da24e46d2038"},
		{"sha256", "1cef52d3096384a5441aeac86d6387baf9e4a353430e39e1734f15092481232b"},
	}

	for _, tt := range tests {
		t.Run(tt.alg, func(t *testing.T) {
			s, err := New(input, WithDigest(tt.alg))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			want, _ := hex.DecodeString(tt.want)
			if s.Value().Cmp(new(big.Int).SetBytes(want)) != 0 {
				t.Errorf("digest value = %x, want %s", s.Value().Bytes(), tt.want)
			}
			if s.Len() != len(want) {
				t.Errorf("Len() = %d, want %d", s.Len(), len(want))
			}
		})
	}
}

func TestDigestSalt(t *testing.T) {
	const input = "this is a very long string that is more than we need"

	plain, _ := New(input, WithDigest("sha256"))
	salted, _ := New(input, WithDigest("sha256"), WithSalt([]byte("foo")))

	p, _ := plain.ExtractInt(8)
	s, _ := salted.ExtractInt(8)
	if p != 3 || s != 4 {
		t.Errorf("plain/salted = %d/%d, want 3/4", p, s)
	}
}

func TestDigestUnknown(t *testing.T) {
	if _, err := New("x", WithDigest("crc32")); !errors.Is(err, ErrUnknownDigest) {
		t.Errorf("error = %v, want ErrUnknownDigest", err)
	}
}

func TestDigestsListed(t *testing.T) {
	for _, name := range Digests() {
		if _, err := Digest(name, nil, []byte("x")); err != nil {
			t.Errorf("Digest(%q): %v", name, err)
		}
	}
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		kind, text string
		want       *big.Int
	}{
		{KindString, "A", big.NewInt(0x41)},
		{"", "AB", big.NewInt(0x4142)},
		{KindHex, "0539", big.NewInt(1337)},
		{KindHex, "0x539", big.NewInt(1337)},
		{KindInt, "1337", big.NewInt(1337)},
		{KindInt, "0x539", big.NewInt(1337)},
		{KindUUID, "00000000-0000-0000-0000-000000000539", big.NewInt(1337)},
	}

	for _, tt := range tests {
		in, err := ParseInput(tt.kind, tt.text)
		if err != nil {
			t.Errorf("ParseInput(%q, %q): %v", tt.kind, tt.text, err)
			continue
		}
		s, err := New(in)
		if err != nil {
			t.Errorf("New(ParseInput(%q, %q)): %v", tt.kind, tt.text, err)
			continue
		}
		if s.Value().Cmp(tt.want) != 0 {
			t.Errorf("ParseInput(%q, %q) value = %v, want %v", tt.kind, tt.text, s.Value(), tt.want)
		}
	}
}

func TestParseInputInvalid(t *testing.T) {
	tests := []struct{ kind, text string }{
		{KindHex, "xyz"},
		{KindInt, "-4"},
		{KindInt, "twelve"},
		{KindUUID, "not-a-uuid"},
		{"base64", "QQ=="},
	}
	for _, tt := range tests {
		if _, err := ParseInput(tt.kind, tt.text); !errors.Is(err, ErrInvalidSourceType) {
			t.Errorf("ParseInput(%q, %q) error = %v, want ErrInvalidSourceType", tt.kind, tt.text, err)
		}
	}
}
