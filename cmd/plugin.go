package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/getcreddy/humanhash/pkg/dict"
	"github.com/getcreddy/humanhash/pkg/plugin"
)

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Manage dictionary plugins",
	Long: `Install and manage dictionary plugins. A plugin is an executable named
` + plugin.BinaryPrefix + `NAME in the plugin directory; its dictionary is
registered as NAME.`,
}

var pluginListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed plugins",
	RunE:  runPluginList,
}

var pluginInstallCmd = &cobra.Command{
	Use:   "install <reference|path> [reference|path...]",
	Short: "Install plugins",
	Long: `Install plugins from an OCI registry or a local binary.

Examples:
  humanhash plugin install ttl.sh/humanhash-dict-pokemon:1h
  humanhash plugin install ./humanhash-dict-pokemon`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPluginInstall,
}

var pluginRemoveCmd = &cobra.Command{
	Use:   "remove <plugin> [plugin...]",
	Short: "Remove installed plugins",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPluginRemove,
}

var pluginInfoCmd = &cobra.Command{
	Use:   "info <plugin>",
	Short: "Show detailed plugin information",
	Args:  cobra.ExactArgs(1),
	RunE:  runPluginInfo,
}

var pluginServeCmd = &cobra.Command{
	Use:   "serve <wordlist>",
	Short: "Serve a word list as a dictionary plugin",
	Long: `Run as a dictionary plugin serving the words in a file. Install a
wrapper script as ` + plugin.BinaryPrefix + `NAME to share a large word list
between processes without embedding it in their configuration.`,
	Args:   cobra.ExactArgs(1),
	Hidden: true,
	RunE:   runPluginServe,
}

var pluginServeDescription string

func init() {
	rootCmd.AddCommand(pluginCmd)
	pluginCmd.AddCommand(pluginListCmd)
	pluginCmd.AddCommand(pluginInstallCmd)
	pluginCmd.AddCommand(pluginRemoveCmd)
	pluginCmd.AddCommand(pluginInfoCmd)
	pluginCmd.AddCommand(pluginServeCmd)

	pluginServeCmd.Flags().StringVar(&pluginServeDescription, "description", "", "Description reported to the host")
}

func getPluginDir() (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	return dataPath("plugin_dir", cfg.PluginDir, "plugins"), nil
}

func runPluginList(cmd *cobra.Command, args []string) error {
	pluginDir, err := getPluginDir()
	if err != nil {
		return err
	}
	loader := plugin.NewLoader(pluginDir)
	loader.SetLogger(newLogger().Named("plugin"))

	names, err := loader.DiscoverPlugins()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Printf("No plugins installed in %s\n", pluginDir)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tDESCRIPTION")
	for _, name := range names {
		p, err := loader.LoadPlugin(name)
		if err != nil {
			fmt.Fprintf(w, "%s\t-\tfailed to load: %v\n", name, err)
			continue
		}
		info := p.Dictionary.Info()
		fmt.Fprintf(w, "%s\t%d\t%s\n", name, info.Size, info.Description)
	}
	w.Flush()
	loader.UnloadAll()

	return nil
}

func runPluginInstall(cmd *cobra.Command, args []string) error {
	pluginDir, err := getPluginDir()
	if err != nil {
		return err
	}

	for _, arg := range args {
		fmt.Printf("Installing %s...\n", arg)
		if isOCIReference(arg) {
			err = installFromOCI(cmd.Context(), arg, pluginDir)
		} else {
			err = installFromFile(arg, pluginDir)
		}
		if err != nil {
			return fmt.Errorf("failed to install %s: %w", arg, err)
		}
	}
	return nil
}

// installFromOCI pulls a plugin from an OCI registry using ORAS. The artifact
// holds one binary per platform, suffixed with -GOOS-GOARCH.
func installFromOCI(ctx context.Context, reference, pluginDir string) error {
	files, cleanup, err := pullArtifact(ctx, reference)
	if err != nil {
		return err
	}
	defer cleanup()

	platformSuffix := fmt.Sprintf("-%s-%s", runtime.GOOS, runtime.GOARCH)

	var binaryPath string
	var available []string
	for _, f := range files {
		base := filepath.Base(f)
		available = append(available, base)
		if strings.HasSuffix(base, platformSuffix) {
			binaryPath = f
		}
	}
	if binaryPath == "" {
		return fmt.Errorf("no binary for platform %s/%s found in OCI artifact (available: %s)",
			runtime.GOOS, runtime.GOARCH, strings.Join(available, ", "))
	}

	// e.g. "humanhash-dict-pokemon-linux-amd64" -> "humanhash-dict-pokemon"
	destName := strings.TrimSuffix(filepath.Base(binaryPath), platformSuffix)
	if !strings.HasPrefix(destName, plugin.BinaryPrefix) {
		destName = plugin.BinaryPrefix + strings.TrimPrefix(artifactName(reference), plugin.BinaryPrefix)
	}

	if err := copyFile(binaryPath, filepath.Join(pluginDir, destName), 0755); err != nil {
		return err
	}
	fmt.Printf("✓ Installed %s for %s/%s\n", destName, runtime.GOOS, runtime.GOARCH)
	return nil
}

func installFromFile(path, pluginDir string) error {
	destName := filepath.Base(path)
	if !strings.HasPrefix(destName, plugin.BinaryPrefix) {
		destName = plugin.BinaryPrefix + destName
	}
	if err := copyFile(path, filepath.Join(pluginDir, destName), 0755); err != nil {
		return err
	}
	fmt.Printf("✓ Installed %s\n", destName)
	return nil
}

func runPluginRemove(cmd *cobra.Command, args []string) error {
	pluginDir, err := getPluginDir()
	if err != nil {
		return err
	}

	for _, name := range args {
		path := filepath.Join(pluginDir, plugin.BinaryPrefix+strings.TrimPrefix(name, plugin.BinaryPrefix))
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintf(os.Stderr, "Plugin not found: %s\n", name)
				continue
			}
			fmt.Fprintf(os.Stderr, "Failed to remove %s: %v\n", name, err)
			continue
		}
		fmt.Printf("✓ Removed %s\n", name)
	}

	return nil
}

func runPluginInfo(cmd *cobra.Command, args []string) error {
	name := args[0]
	pluginDir, err := getPluginDir()
	if err != nil {
		return err
	}
	loader := plugin.NewLoader(pluginDir)
	loader.SetLogger(newLogger().Named("plugin"))

	p, err := loader.LoadPlugin(name)
	if err != nil {
		return fmt.Errorf("failed to load plugin: %w", err)
	}
	defer loader.UnloadPlugin(name)

	info := p.Dictionary.Info()
	fmt.Printf("Name:          %s\n", p.Name)
	fmt.Printf("Description:   %s\n", info.Description)
	fmt.Printf("Size:          %d\n", info.Size)
	fmt.Printf("Longest entry: %d bytes\n", info.MaxEntryLen)
	fmt.Printf("Installed:     %s\n", p.Path)

	sample := min(info.Size, 5)
	if sample > 0 {
		fmt.Println("\nFirst entries:")
		for i := 0; i < sample; i++ {
			w, err := p.Dictionary.Entry(i)
			if err != nil {
				return err
			}
			fmt.Printf("  %d\t%s\n", i, w)
		}
	}

	return nil
}

func runPluginServe(cmd *cobra.Command, args []string) error {
	words, err := dict.LoadFile(args[0])
	if err != nil {
		return err
	}
	d, err := dict.NewArray(words, dict.Options{})
	if err != nil {
		return err
	}
	description := pluginServeDescription
	if description == "" {
		description = fmt.Sprintf("%s (%d words)", filepath.Base(args[0]), len(words))
	}
	plugin.Serve(d, description)
	return nil
}
