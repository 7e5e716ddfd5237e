package plugin

import (
	"errors"
	"net"
	"net/rpc"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/getcreddy/humanhash/pkg/dict"
	"github.com/getcreddy/humanhash/pkg/humanhash"
	"github.com/getcreddy/humanhash/pkg/source"
)

var pluginWords = []string{"red", "green", "blue", "yellow", "purple"}

// connect serves d over an in-memory connection the way a plugin binary
// would, and returns the loaded host side.
func connect(t *testing.T, d dict.Dictionary) *RemoteDictionary {
	t.Helper()

	p := &DictionaryPlugin{Impl: d, Description: "colours"}
	impl, err := p.Server(nil)
	if err != nil {
		t.Fatalf("Server: %v", err)
	}
	server := rpc.NewServer()
	if err := server.RegisterName("Plugin", impl); err != nil {
		t.Fatalf("RegisterName: %v", err)
	}

	serverConn, clientConn := net.Pipe()
	go server.ServeConn(serverConn)
	client := rpc.NewClient(clientConn)
	t.Cleanup(func() { client.Close() })

	raw, err := (&DictionaryPlugin{}).Client(nil, client)
	if err != nil {
		t.Fatalf("Client: %v", err)
	}
	remote := raw.(*RemoteDictionary)
	if err := remote.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return remote
}

func TestRemoteDictionary(t *testing.T) {
	local, err := dict.NewArray(pluginWords, dict.Options{})
	if err != nil {
		t.Fatalf("NewArray: %v", err)
	}
	remote := connect(t, local)

	want := Info{Description: "colours", Size: 5, MaxEntryLen: 6}
	if diff := cmp.Diff(want, remote.Info()); diff != "" {
		t.Errorf("Info mismatch (-want +got):\n%s", diff)
	}

	w, err := remote.Entry(3)
	if err != nil || w != "yellow" {
		t.Errorf("Entry(3) = %q, %v, want yellow", w, err)
	}
	if i, ok := remote.Lookup("blue"); !ok || i != 2 {
		t.Errorf("Lookup(blue) = %d, %v, want 2, true", i, ok)
	}
	if _, ok := remote.Lookup("black"); ok {
		t.Error("Lookup(black) found a word")
	}
	if _, err := remote.Entry(5); !errors.Is(err, dict.ErrIndexOutOfRange) {
		t.Errorf("Entry(5) error = %v, want ErrIndexOutOfRange", err)
	}

	words, err := remote.Words()
	if err != nil {
		t.Fatalf("Words: %v", err)
	}
	if diff := cmp.Diff(pluginWords, words); diff != "" {
		t.Errorf("Words mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoteFactory(t *testing.T) {
	local, err := dict.NewArray(pluginWords, dict.Options{})
	if err != nil {
		t.Fatalf("NewArray: %v", err)
	}
	remote := connect(t, local)
	factory := remote.Factory()

	d, err := factory(dict.Options{})
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if d != dict.Dictionary(remote) {
		t.Errorf("plain placeholder got %T, want the remote dictionary", d)
	}

	d, err = factory(dict.Options{Params: map[string]string{"max-length": "4"}})
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if got := d.Size(); got != 2 {
		t.Errorf("max-length=4 size = %d, want 2", got)
	}

	if _, err := factory(dict.Options{Args: []string{"3"}}); !errors.Is(err, dict.ErrInvalidOption) {
		t.Errorf("factory with args error = %v, want ErrInvalidOption", err)
	}
}

func TestRemoteRoundTrip(t *testing.T) {
	local, err := dict.NewArray(pluginWords, dict.Options{})
	if err != nil {
		t.Fatalf("NewArray: %v", err)
	}
	remote := connect(t, local)

	reg := dict.NewRegistry()
	reg.Register("colour", remote.Factory(), dict.RegisterOptions{})

	h, err := humanhash.New("{{colour caps}}-{{colour}}", humanhash.WithDictionaries(reg), humanhash.WithValidation(true))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := h.Encode(source.FromUint64(4 + 5*2))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if out != "PURPLE-blue" {
		t.Errorf("Encode = %q, want PURPLE-blue", out)
	}
	v, err := h.DecodeInt(out)
	if err != nil {
		t.Fatalf("DecodeInt: %v", err)
	}
	if v.Int64() != 14 {
		t.Errorf("DecodeInt = %v, want 14", v)
	}
}

func TestServerWithoutImpl(t *testing.T) {
	if _, err := (&DictionaryPlugin{}).Server(nil); err == nil {
		t.Error("Server without an implementation succeeded")
	}
}

func TestDiscoverPlugins(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"humanhash-dict-colours", "humanhash-dict-animals", "humanhash-dict-", "README.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "humanhash-dict-dir"), 0755); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(dir)
	got, err := l.DiscoverPlugins()
	if err != nil {
		t.Fatalf("DiscoverPlugins: %v", err)
	}
	if diff := cmp.Diff([]string{"animals", "colours"}, got); diff != "" {
		t.Errorf("plugins mismatch (-want +got):\n%s", diff)
	}

	if p := l.findPluginBinary("colours"); p != filepath.Join(dir, "humanhash-dict-colours") {
		t.Errorf("findPluginBinary(colours) = %q", p)
	}
	if _, err := l.LoadPlugin("missing"); err == nil {
		t.Error("LoadPlugin(missing) succeeded")
	}
}

func TestRegisterAllEmpty(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "does-not-exist"))
	reg := dict.NewRegistry()
	if err := l.RegisterAll(reg); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	if n := len(reg.List()); n != 0 {
		t.Errorf("registered %d dictionaries, want 0", n)
	}
	if err := l.UnloadPlugin("colours"); err == nil {
		t.Error("UnloadPlugin of a plugin never loaded succeeded")
	}
}
