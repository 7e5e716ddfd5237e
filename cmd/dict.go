package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/getcreddy/humanhash/pkg/dict"
)

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Inspect and install dictionaries",
}

var dictListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered dictionaries",
	RunE:  runDictList,
}

var dictShowCmd = &cobra.Command{
	Use:   "show <name> [arg]",
	Short: "Show the entries of a dictionary",
	Long: `Show the size and first entries of a dictionary. The optional argument is
passed as in a placeholder, e.g. 'humanhash dict show decimal 3'.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDictShow,
}

var dictPullCmd = &cobra.Command{
	Use:   "pull <reference>",
	Short: "Install word lists from an OCI registry",
	Long: `Pull an OCI artifact and copy every ` + dict.WordListExt + ` file it contains into
the word-list directory. Each file is registered under its name without the
extension.

Examples:
  humanhash dict pull ttl.sh/humanhash-words:1h
  humanhash dict pull ghcr.io/example/animals:1.0 --name animals`,
	Args: cobra.ExactArgs(1),
	RunE: runDictPull,
}

var (
	dictShowLimit int
	dictShowSafe  bool
	dictPullName  string
)

func init() {
	rootCmd.AddCommand(dictCmd)
	dictCmd.AddCommand(dictListCmd)
	dictCmd.AddCommand(dictShowCmd)
	dictCmd.AddCommand(dictPullCmd)

	dictShowCmd.Flags().IntVar(&dictShowLimit, "limit", 20, "Number of entries to show (0 for all)")
	dictShowCmd.Flags().BoolVar(&dictShowSafe, "unhash-safe", false, "Show the unhash-safe entries")
	dictPullCmd.Flags().StringVar(&dictPullName, "name", "", "Dictionary name when the artifact holds a single word list")
}

func runDictList(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSAFE\tDESCRIPTION")
	for _, info := range env.reg.List() {
		safe := ""
		if info.UnhashSafe {
			safe = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", info.Name, safe, info.Description)
	}
	return w.Flush()
}

func runDictShow(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	d, err := env.reg.New(args[0], dict.Options{Args: args[1:], Safe: dictShowSafe})
	if err != nil {
		return err
	}

	fmt.Printf("Size:          %d\n", d.Size())
	fmt.Printf("Longest entry: %d bytes\n\n", d.MaxEntryLen())

	n := d.Size()
	if dictShowLimit > 0 && dictShowLimit < n {
		n = dictShowLimit
	}
	for i := 0; i < n; i++ {
		word, err := d.Entry(i)
		if err != nil {
			return err
		}
		fmt.Printf("%d\t%s\n", i, word)
	}
	if n < d.Size() {
		fmt.Printf("... %d more\n", d.Size()-n)
	}
	return nil
}

func runDictPull(cmd *cobra.Command, args []string) error {
	reference := args[0]
	if !isOCIReference(reference) {
		return fmt.Errorf("not an OCI reference: %s (expected registry/repo:tag)", reference)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir := dataPath("wordlist_dir", cfg.WordlistDir, "words")

	files, cleanup, err := pullArtifact(cmd.Context(), reference)
	if err != nil {
		return err
	}
	defer cleanup()

	var lists []string
	for _, f := range files {
		if strings.HasSuffix(f, dict.WordListExt) {
			lists = append(lists, f)
		}
	}
	if len(lists) == 0 {
		return fmt.Errorf("no %s word lists found in %s", dict.WordListExt, reference)
	}
	if dictPullName != "" && len(lists) > 1 {
		return fmt.Errorf("--name needs an artifact with a single word list, %s has %d", reference, len(lists))
	}

	for _, src := range lists {
		// reject lists that would not load
		words, err := dict.LoadFile(src)
		if err != nil {
			return err
		}

		name := strings.TrimSuffix(filepath.Base(src), dict.WordListExt)
		if dictPullName != "" {
			name = dictPullName
		}
		if err := copyFile(src, filepath.Join(dir, name+dict.WordListExt), 0644); err != nil {
			return err
		}
		fmt.Printf("✓ Installed %s (%d words)\n", name, len(words))
	}
	return nil
}
