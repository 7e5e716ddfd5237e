// Package plugin handles loading and serving out-of-process dictionaries.
package plugin

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	"github.com/getcreddy/humanhash/pkg/dict"
)

// BinaryPrefix is the file name prefix of dictionary plugin binaries. The rest
// of the file name is the dictionary name.
const BinaryPrefix = "humanhash-dict-"

// Loader manages plugin lifecycle
type Loader struct {
	pluginDir string
	plugins   map[string]*LoadedPlugin
	mu        sync.RWMutex
	logger    hclog.Logger
}

// LoadedPlugin represents a loaded and running plugin
type LoadedPlugin struct {
	Name       string
	Path       string
	Client     *plugin.Client
	Dictionary *RemoteDictionary
}

// NewLoader creates a new plugin loader
func NewLoader(pluginDir string) *Loader {
	if pluginDir == "" {
		home, _ := os.UserHomeDir()
		pluginDir = filepath.Join(home, ".humanhash", "plugins")
	}

	return &Loader{
		pluginDir: pluginDir,
		plugins:   make(map[string]*LoadedPlugin),
		logger:    hclog.NewNullLogger(),
	}
}

// SetLogger sets the logger for plugin communication
func (l *Loader) SetLogger(logger hclog.Logger) {
	l.logger = logger
}

// DiscoverPlugins finds all dictionary plugins in the plugin directory
func (l *Loader) DiscoverPlugins() ([]string, error) {
	entries, err := os.ReadDir(l.pluginDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read plugin directory: %w", err)
	}

	var plugins []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := strings.CutPrefix(entry.Name(), BinaryPrefix)
		if !ok || name == "" {
			continue
		}
		plugins = append(plugins, name)
	}
	sort.Strings(plugins)

	return plugins, nil
}

// LoadPlugin starts a single plugin and fetches its description
func (l *Loader) LoadPlugin(name string) (*LoadedPlugin, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Check if already loaded
	if p, ok := l.plugins[name]; ok {
		return p, nil
	}

	binaryPath := l.findPluginBinary(name)
	if binaryPath == "" {
		return nil, fmt.Errorf("plugin not found: %s", name)
	}

	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins:         PluginMap,
		Cmd:             exec.Command(binaryPath),
		Logger:          l.logger.Named(name),
		AllowedProtocols: []plugin.Protocol{
			plugin.ProtocolNetRPC,
		},
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("failed to connect to plugin: %w", err)
	}

	raw, err := rpcClient.Dispense(PluginName)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("failed to dispense plugin: %w", err)
	}

	d, ok := raw.(*RemoteDictionary)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("plugin does not implement the dictionary protocol")
	}

	if err := d.Load(); err != nil {
		client.Kill()
		return nil, err
	}
	if err := dict.Check(d); err != nil {
		client.Kill()
		return nil, fmt.Errorf("plugin %s: %w", name, err)
	}

	loaded := &LoadedPlugin{
		Name:       name,
		Path:       binaryPath,
		Client:     client,
		Dictionary: d,
	}

	l.plugins[name] = loaded
	return loaded, nil
}

// LoadAllPlugins discovers and loads all available plugins
func (l *Loader) LoadAllPlugins() error {
	plugins, err := l.DiscoverPlugins()
	if err != nil {
		return err
	}

	for _, name := range plugins {
		if _, err := l.LoadPlugin(name); err != nil {
			l.logger.Warn("failed to load plugin", "name", name, "error", err)
		}
	}

	return nil
}

// RegisterAll loads every plugin and registers its dictionary in reg under the
// plugin name.
func (l *Loader) RegisterAll(reg *dict.Registry) error {
	if err := l.LoadAllPlugins(); err != nil {
		return err
	}

	for _, p := range l.ListPlugins() {
		info := p.Dictionary.Info()
		err := reg.Register(p.Name, p.Dictionary.Factory(), dict.RegisterOptions{
			Description: info.Description,
		})
		if err != nil {
			return fmt.Errorf("plugin %s: %w", p.Name, err)
		}
		l.logger.Debug("registered plugin dictionary", "name", p.Name, "size", info.Size)
	}
	return nil
}

// GetPlugin returns a loaded plugin by name
func (l *Loader) GetPlugin(name string) (*LoadedPlugin, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.plugins[name]
	return p, ok
}

// ListPlugins returns all loaded plugins, sorted by name
func (l *Loader) ListPlugins() []*LoadedPlugin {
	l.mu.RLock()
	defer l.mu.RUnlock()

	plugins := make([]*LoadedPlugin, 0, len(l.plugins))
	for _, p := range l.plugins {
		plugins = append(plugins, p)
	}
	sort.Slice(plugins, func(i, j int) bool { return plugins[i].Name < plugins[j].Name })
	return plugins
}

// UnloadPlugin stops and removes a plugin
func (l *Loader) UnloadPlugin(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.plugins[name]
	if !ok {
		return fmt.Errorf("plugin not loaded: %s", name)
	}

	p.Client.Kill()
	delete(l.plugins, name)
	return nil
}

// UnloadAll stops all plugins
func (l *Loader) UnloadAll() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for name, p := range l.plugins {
		p.Client.Kill()
		delete(l.plugins, name)
	}
}

// findPluginBinary looks for the plugin binary in the plugin directory
func (l *Loader) findPluginBinary(name string) string {
	path := filepath.Join(l.pluginDir, BinaryPrefix+name)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// PluginDir returns the plugin directory path
func (l *Loader) PluginDir() string {
	return l.pluginDir
}
