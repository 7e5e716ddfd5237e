package transform

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuiltins(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"uppercase", "frog", "Frog"},
		{"uppercase", "", ""},
		{"uppercase", "écu", "Écu"},
		{"caps", "octopus", "OCTOPUS"},
		{"lowercase", "TiGeR", "tiger"},
	}

	for _, tt := range tests {
		t.Run(tt.name+"_"+tt.in, func(t *testing.T) {
			tr, ok := Default().Lookup(tt.name)
			if !ok {
				t.Fatalf("%s not registered", tt.name)
			}
			if got := tr.Apply(tt.in); got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.name, tt.in, got, tt.want)
			}
			if !tr.Reversible() {
				t.Errorf("%s has no inverse", tt.name)
			}
		})
	}
}

func TestChain(t *testing.T) {
	chain, err := Default().Resolve([]string{"lowercase", "uppercase"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := chain.Apply("BEAR"); got != "Bear" {
		t.Errorf("Apply = %q, want %q", got, "Bear")
	}
	got, ok := chain.Undo("Bear")
	if !ok || got != "bear" {
		t.Errorf("Undo = %q, %v, want %q, true", got, ok, "bear")
	}
}

func TestChainIrreversible(t *testing.T) {
	r := Default().Clone()
	if err := r.Register("shout", func(s string) string { return s + "!" }, nil); err != nil {
		t.Fatalf("Register: %v", err)
	}

	chain, err := r.Resolve([]string{"caps", "shout"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, ok := chain.Undo("FROG!"); ok {
		t.Error("Undo succeeded without an inverse")
	}
	if diff := cmp.Diff([]string{"shout"}, chain.Irreversible()); diff != "" {
		t.Errorf("Irreversible mismatch (-want +got):\n%s", diff)
	}
	if Default().Has("shout") {
		t.Error("Clone leaked into the default registry")
	}
}

func TestResolveUnknown(t *testing.T) {
	_, err := Default().Resolve([]string{"caps", "sparkle"})
	if !errors.Is(err, ErrUnknownTransform) {
		t.Fatalf("error = %v, want ErrUnknownTransform", err)
	}
	if !strings.Contains(err.Error(), "sparkle") {
		t.Errorf("error %q does not name the transform", err)
	}
}

func TestRegisterInvalid(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("", Lower, nil); !errors.Is(err, ErrInvalidTransform) {
		t.Errorf("empty name error = %v", err)
	}
	if err := r.Register("x", nil, nil); !errors.Is(err, ErrInvalidTransform) {
		t.Errorf("nil apply error = %v", err)
	}
}

func TestNames(t *testing.T) {
	want := []string{"caps", "lowercase", "uppercase"}
	if diff := cmp.Diff(want, Default().Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
}
