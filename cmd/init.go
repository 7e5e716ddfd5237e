package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/getcreddy/humanhash/pkg/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration",
	Long: `Write a starter config file and create the word-list and plugin
directories. The config declares an example format and dictionary to edit.`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to find home directory: %w", err)
	}

	path := cfgFile
	if path == "" {
		path = filepath.Join(home, ".config", "humanhash", "config.yaml")
	}
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	dataDir := filepath.Join(home, ".humanhash")
	cfg := config.Config{
		Formats: map[string]config.Format{
			"ticket": {
				Template:    "{{adjective}}-{{colour}}-{{noun}}",
				Description: "support ticket names",
				Digest:      "sha256",
			},
		},
		Dictionaries: map[string]config.Dictionary{
			"colour": {
				Words:       []string{"red", "orange", "yellow", "green", "blue", "indigo", "violet", "black"},
				Description: "rainbow colours",
			},
		},
		WordlistDir: filepath.Join(dataDir, "words"),
		PluginDir:   filepath.Join(dataDir, "plugins"),
		Database:    filepath.Join(dataDir, "humanhash.db"),
		Server:      config.Server{Listen: "127.0.0.1:8484"},
		LogLevel:    "warn",
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	for _, dir := range []string{filepath.Dir(path), cfg.WordlistDir, cfg.PluginDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("✓ Config written to %s\n", path)
	fmt.Printf("✓ Word lists go in %s\n", cfg.WordlistDir)
	fmt.Printf("✓ Plugins go in %s\n", cfg.PluginDir)
	fmt.Println()
	fmt.Println("Try: humanhash encode --format ticket hello")
	return nil
}
