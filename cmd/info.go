package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show a format's slots and how many values it can encode",
	RunE:  runInfo,
}

var (
	infoFormat   string
	infoTemplate string
	infoJSON     bool
)

func init() {
	rootCmd.AddCommand(infoCmd)
	addFormatFlags(infoCmd, &infoFormat, &infoTemplate)
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Output as JSON")
}

type formatInfo struct {
	Format        string     `json:"format"`
	Template      string     `json:"template"`
	Entropy       string     `json:"entropy"`
	EntropyBits   int        `json:"entropy_bits"`
	DecimalDigits int        `json:"entropy_decimal_digits"`
	ByteLen       int        `json:"byte_len"`
	Unhashable    bool       `json:"unhashable"`
	NotUnhashable string     `json:"not_unhashable,omitempty"`
	Slots         []slotInfo `json:"slots"`
}

type slotInfo struct {
	Dictionary string   `json:"dictionary"`
	Args       []string `json:"args,omitempty"`
	Transforms []string `json:"transforms,omitempty"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	h, err := env.hasher(infoFormat, infoTemplate)
	if err != nil {
		return err
	}

	info := formatInfo{
		Format:        formatName(infoFormat, infoTemplate),
		Template:      h.Template(),
		Entropy:       h.Entropy().String(),
		EntropyBits:   h.EntropyBits(),
		DecimalDigits: h.EntropyDecimalDigits(),
		ByteLen:       h.ByteLen(),
		Unhashable:    true,
	}
	if err := h.Validate(); err != nil {
		info.Unhashable = false
		info.NotUnhashable = err.Error()
	}
	for _, s := range h.Format().Slots {
		info.Slots = append(info.Slots, slotInfo{
			Dictionary: s.Dictionary,
			Args:       s.Args,
			Transforms: s.Transforms,
		})
	}

	if infoJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Printf("Format:     %s\n", info.Format)
	fmt.Printf("Template:   %s\n", info.Template)
	fmt.Printf("Entropy:    %s (%d bits, %d bytes)\n", info.Entropy, info.EntropyBits, info.ByteLen)
	if info.Unhashable {
		fmt.Println("Unhashable: yes")
	} else {
		fmt.Printf("Unhashable: no (%s)\n", info.NotUnhashable)
	}

	if len(info.Slots) > 0 {
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SLOT\tDICTIONARY\tARGS\tTRANSFORMS")
		for i, s := range info.Slots {
			fmt.Fprintf(w, "%d\t%s\t%v\t%v\n", i, s.Dictionary, s.Args, s.Transforms)
		}
		w.Flush()
	}
	return nil
}
