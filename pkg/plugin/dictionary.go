package plugin

import (
	"fmt"
	"net/rpc"

	"github.com/hashicorp/go-plugin"

	"github.com/getcreddy/humanhash/pkg/dict"
)

// PluginName is the key dictionary plugins are dispensed under.
const PluginName = "dictionary"

// HandshakeConfig is shared by the host and every dictionary plugin binary.
var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "HUMANHASH_PLUGIN",
	MagicCookieValue: "dictionary",
}

// PluginMap is the set of plugins a dictionary binary serves.
var PluginMap = map[string]plugin.Plugin{
	PluginName: &DictionaryPlugin{},
}

// Info describes a served dictionary.
type Info struct {
	Description string
	Size        int
	MaxEntryLen int
}

// LookupReply is the result of a remote Lookup.
type LookupReply struct {
	Index int
	Found bool
}

// Serve runs a plugin binary exposing d. It blocks until the host disconnects.
func Serve(d dict.Dictionary, description string) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins: map[string]plugin.Plugin{
			PluginName: &DictionaryPlugin{Impl: d, Description: description},
		},
	})
}

// DictionaryPlugin implements plugin.Plugin over net/rpc.
type DictionaryPlugin struct {
	Impl        dict.Dictionary
	Description string
}

func (p *DictionaryPlugin) Server(*plugin.MuxBroker) (interface{}, error) {
	if p.Impl == nil {
		return nil, fmt.Errorf("dictionary plugin has no implementation")
	}
	return &RPCServer{Impl: p.Impl, Description: p.Description}, nil
}

func (p *DictionaryPlugin) Client(_ *plugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &RemoteDictionary{client: c}, nil
}

// RPCServer is the plugin side of the protocol.
type RPCServer struct {
	Impl        dict.Dictionary
	Description string
}

func (s *RPCServer) Info(_ interface{}, resp *Info) error {
	*resp = Info{
		Description: s.Description,
		Size:        s.Impl.Size(),
		MaxEntryLen: s.Impl.MaxEntryLen(),
	}
	return nil
}

func (s *RPCServer) Entry(index int, resp *string) error {
	w, err := s.Impl.Entry(index)
	if err != nil {
		return err
	}
	*resp = w
	return nil
}

func (s *RPCServer) Lookup(word string, resp *LookupReply) error {
	resp.Index, resp.Found = s.Impl.Lookup(word)
	return nil
}

// RemoteDictionary is the host side of the protocol. Size and MaxEntryLen are
// fetched once by Load and must not change afterwards.
type RemoteDictionary struct {
	client *rpc.Client
	info   Info
}

var _ dict.Dictionary = (*RemoteDictionary)(nil)

// Load fetches and caches the dictionary description.
func (r *RemoteDictionary) Load() error {
	var info Info
	if err := r.client.Call("Plugin.Info", new(interface{}), &info); err != nil {
		return fmt.Errorf("failed to describe dictionary: %w", err)
	}
	r.info = info
	return nil
}

// Info returns what Load fetched.
func (r *RemoteDictionary) Info() Info {
	return r.info
}

func (r *RemoteDictionary) Size() int {
	return r.info.Size
}

func (r *RemoteDictionary) Entry(index int) (string, error) {
	if index < 0 || index >= r.info.Size {
		return "", fmt.Errorf("%w: %d not in [0, %d)", dict.ErrIndexOutOfRange, index, r.info.Size)
	}
	var w string
	if err := r.client.Call("Plugin.Entry", index, &w); err != nil {
		return "", err
	}
	return w, nil
}

// Lookup reports a transport failure as not found.
func (r *RemoteDictionary) Lookup(word string) (int, bool) {
	var reply LookupReply
	if err := r.client.Call("Plugin.Lookup", word, &reply); err != nil {
		return 0, false
	}
	return reply.Index, reply.Found
}

func (r *RemoteDictionary) MaxEntryLen() int {
	return r.info.MaxEntryLen
}

// Words fetches every entry.
func (r *RemoteDictionary) Words() ([]string, error) {
	words := make([]string, r.info.Size)
	for i := range words {
		w, err := r.Entry(i)
		if err != nil {
			return nil, err
		}
		words[i] = w
	}
	return words, nil
}

// Factory adapts r to a dict.Factory. Placeholders that filter by length or
// ask for unhash-safe entries get a local Array built from the fetched words;
// all others use r directly.
func (r *RemoteDictionary) Factory() dict.Factory {
	return func(opts dict.Options) (dict.Dictionary, error) {
		if len(opts.Args) > 0 {
			return nil, fmt.Errorf("%w: plugin dictionaries take no arguments", dict.ErrInvalidOption)
		}
		if len(opts.Params) == 0 && !opts.Safe {
			return r, nil
		}
		words, err := r.Words()
		if err != nil {
			return nil, err
		}
		return dict.NewArray(words, opts)
	}
}
