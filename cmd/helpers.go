package cmd

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/viper"

	"github.com/getcreddy/humanhash/pkg/config"
	"github.com/getcreddy/humanhash/pkg/dict"
	"github.com/getcreddy/humanhash/pkg/humanhash"
	"github.com/getcreddy/humanhash/pkg/plugin"
	"github.com/getcreddy/humanhash/pkg/store"
)

// environment is everything a command needs to build hashers.
type environment struct {
	cfg    *config.Config
	reg    *dict.Registry
	base   *dict.Registry // reg before the word-list directory was registered
	loader *plugin.Loader
	logger hclog.Logger
}

func newLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "humanhash",
		Level:  hclog.LevelFromString(viper.GetString("log_level")),
		Output: os.Stderr,
	})
}

// dataPath returns the configured value of key, or a path under ~/.humanhash.
func dataPath(key, fallback, name string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	if fallback != "" {
		return fallback
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".humanhash", name)
	}
	return ""
}

func loadConfig() (*config.Config, error) {
	path := viper.ConfigFileUsed()
	if path == "" {
		return &config.Config{}, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, nil
}

// loadEnvironment registers the configured dictionaries, the word-list
// directory and every plugin on top of the built-in dictionaries.
func loadEnvironment() (*environment, error) {
	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	reg := dict.Default().Clone()
	if err := cfg.RegisterDictionaries(reg); err != nil {
		return nil, err
	}

	base := reg.Clone()
	if dir := dataPath("wordlist_dir", cfg.WordlistDir, "words"); dir != "" {
		names, err := reg.RegisterDir(dir, dict.RegisterOptions{})
		if err != nil {
			return nil, err
		}
		if len(names) > 0 {
			logger.Debug("registered word lists", "dir", dir, "names", names)
		}
	}

	loader := plugin.NewLoader(dataPath("plugin_dir", cfg.PluginDir, "plugins"))
	loader.SetLogger(logger.Named("plugin"))
	if err := loader.RegisterAll(reg); err != nil {
		loader.UnloadAll()
		return nil, err
	}

	return &environment{cfg: cfg, reg: reg, base: base, loader: loader, logger: logger}, nil
}

func (e *environment) Close() {
	e.loader.UnloadAll()
}

// hasher builds either an ad-hoc template or a named format.
func (e *environment) hasher(format, template string, opts ...humanhash.Option) (*humanhash.Hasher, error) {
	opts = append([]humanhash.Option{humanhash.WithLogger(e.logger.Named("hasher"))}, opts...)
	if template != "" {
		return config.Format{Template: template}.Hasher(e.reg, opts...)
	}
	return e.cfg.Hasher(format, e.reg, opts...)
}

// formatName is the name recorded for labels of an ad-hoc template.
func formatName(format, template string) string {
	if template != "" {
		return template
	}
	if format == "" {
		return config.DefaultFormat
	}
	return format
}

func openStore() (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	path := dataPath("database", cfg.Database, "humanhash.db")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return st, nil
}

// recorder stores labels issued by the CLI and audits them.
type recorder struct {
	st     *store.Store
	format string
}

func newRecorder(format string) (*recorder, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	return &recorder{st: st, format: format}, nil
}

func (r *recorder) record(label string, value *big.Int, source string) error {
	if _, err := r.st.RecordLabel(r.format, label, value, source); err != nil {
		return err
	}
	return r.st.LogAuditEvent("encode", r.format, label, `{"via":"cli"}`, "")
}

func (r *recorder) Close() error {
	return r.st.Close()
}
