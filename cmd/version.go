package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getcreddy/humanhash/pkg/dict"
	"github.com/getcreddy/humanhash/pkg/source"
	"github.com/getcreddy/humanhash/pkg/transform"
)

// Set via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	// Dictionaries maps each built-in dictionary to its default size.
	Dictionaries map[string]int `json:"dictionaries"`
	Transforms   []string       `json:"transforms"`
	Digests      []string       `json:"digests"`
}

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number and built-in dictionaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := VersionInfo{
			Version:      Version,
			Commit:       Commit,
			BuildDate:    BuildDate,
			OS:           runtime.GOOS,
			Arch:         runtime.GOARCH,
			Dictionaries: builtinSizes(dict.Default()),
			Transforms:   transform.Default().Names(),
			Digests:      source.Digests(),
		}

		if versionJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}

		fmt.Printf("humanhash %s\n", Version)
		if Commit != "unknown" && Commit != "" {
			fmt.Printf("  commit:  %s\n", Commit)
		}
		if BuildDate != "unknown" && BuildDate != "" {
			fmt.Printf("  built:   %s\n", BuildDate)
		}
		fmt.Printf("  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)

		var sizes []string
		for _, d := range dict.Default().List() {
			if n, ok := info.Dictionaries[d.Name]; ok {
				sizes = append(sizes, fmt.Sprintf("%s=%d", d.Name, n))
			}
		}
		fmt.Printf("  dicts:   %s\n", strings.Join(sizes, " "))
		fmt.Printf("  transforms: %s\n", strings.Join(info.Transforms, " "))
		fmt.Printf("  digests: %s\n", strings.Join(info.Digests, " "))

		return nil
	},
}

// builtinSizes builds every dictionary in reg with no options and reports its
// size. Dictionaries that fail to build are left out.
func builtinSizes(reg *dict.Registry) map[string]int {
	sizes := make(map[string]int)
	for _, info := range reg.List() {
		d, err := reg.New(info.Name, dict.Options{})
		if err != nil {
			continue
		}
		sizes[info.Name] = d.Size()
	}
	return sizes
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Output as JSON")
}
