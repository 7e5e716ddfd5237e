package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/getcreddy/humanhash/pkg/dict"
	"github.com/getcreddy/humanhash/pkg/humanhash"
)

// DefaultFormat is used when no format is named.
const DefaultFormat = "default"

// builtinFormats are available without any configuration. Entries in the
// config file with the same name replace them.
var builtinFormats = map[string]Format{
	DefaultFormat: {Template: "{{adjective}}-{{noun}}-{{decimal 4}}", Description: "adjective, noun and four digits"},
	"docker":      {Template: "{{adjective}}_{{surname}}", UnhashSafe: true, Description: "Docker-style container name"},
	"short":       {Template: "{{adjective}}-{{noun}}", Description: "adjective and noun"},
	"sentence":    {Template: "{{adjective uppercase}} {{noun}} {{verb}}", Description: "short sentence"},
	"hex":         {Template: "{{hex 4}}-{{hex 4}}-{{hex 4}}", Description: "three groups of four hex digits"},
}

// Config represents the humanhash configuration file
type Config struct {
	Formats      map[string]Format     `yaml:"formats"`
	Dictionaries map[string]Dictionary `yaml:"dictionaries"`
	WordlistDir  string                `yaml:"wordlist_dir"`
	PluginDir    string                `yaml:"plugin_dir"`
	Database     string                `yaml:"database"`
	Server       Server                `yaml:"server"`
	LogLevel     string                `yaml:"log_level"`
}

// Format is a named template with its hashing defaults.
type Format struct {
	Template    string `yaml:"template" json:"template"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Digest      string `yaml:"digest,omitempty" json:"digest,omitempty"`
	Salt        string `yaml:"salt,omitempty" json:"-"`
	UnhashSafe  bool   `yaml:"unhash_safe,omitempty" json:"unhash_safe,omitempty"`
}

// Dictionary is a word list declared in the config, either inline or as a
// file path relative to the config file.
type Dictionary struct {
	File        string   `yaml:"file,omitempty"`
	Words       []string `yaml:"words,omitempty"`
	Description string   `yaml:"description,omitempty"`
	UnhashSafe  bool     `yaml:"unhash_safe,omitempty"`
}

// Server holds the HTTP server settings
type Server struct {
	Listen string `yaml:"listen"`
}

// Load reads config from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for name, d := range cfg.Dictionaries {
		if d.File != "" && !filepath.IsAbs(d.File) {
			d.File = filepath.Join(base, d.File)
			cfg.Dictionaries[name] = d
		}
	}

	return &cfg, nil
}

// Format returns the named format, falling back to the built-in ones.
func (c *Config) Format(name string) (Format, bool) {
	if name == "" {
		name = DefaultFormat
	}
	if f, ok := c.Formats[name]; ok {
		return f, true
	}
	f, ok := builtinFormats[name]
	return f, ok
}

// FormatNames lists the configured and built-in format names, sorted.
func (c *Config) FormatNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range []map[string]Format{builtinFormats, c.Formats} {
		for name := range m {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// RegisterDictionaries adds the configured dictionaries to reg.
func (c *Config) RegisterDictionaries(reg *dict.Registry) error {
	names := make([]string, 0, len(c.Dictionaries))
	for name := range c.Dictionaries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		d := c.Dictionaries[name]
		opts := dict.RegisterOptions{Description: d.Description, UnhashSafe: d.UnhashSafe}

		words := d.Words
		switch {
		case d.File != "" && len(d.Words) > 0:
			return fmt.Errorf("dictionary %q: file and words are mutually exclusive", name)
		case d.File != "":
			var err error
			if words, err = dict.LoadFile(d.File); err != nil {
				return fmt.Errorf("dictionary %q: %w", name, err)
			}
			if opts.Description == "" {
				opts.Description = d.File
			}
		case len(words) == 0:
			return fmt.Errorf("dictionary %q: %w", name, dict.ErrEmptyDictionary)
		}

		if err := reg.RegisterWords(name, words, opts); err != nil {
			return fmt.Errorf("dictionary %q: %w", name, err)
		}
	}
	return nil
}

// Hasher builds the named format against reg.
func (c *Config) Hasher(name string, reg *dict.Registry, opts ...humanhash.Option) (*humanhash.Hasher, error) {
	f, ok := c.Format(name)
	if !ok {
		return nil, fmt.Errorf("unknown format: %s", name)
	}
	return f.Hasher(reg, opts...)
}

// Hasher builds f against reg. opts are applied after the format defaults.
func (f Format) Hasher(reg *dict.Registry, opts ...humanhash.Option) (*humanhash.Hasher, error) {
	all := []humanhash.Option{
		humanhash.WithDictionaries(reg),
		humanhash.WithUnhashSafe(f.UnhashSafe),
	}
	if f.Digest != "" {
		all = append(all, humanhash.WithDigest(f.Digest))
	}
	if f.Salt != "" {
		all = append(all, humanhash.WithSalt([]byte(f.Salt)))
	}
	return humanhash.New(f.Template, append(all, opts...)...)
}
