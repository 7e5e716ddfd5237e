package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode LABEL...",
	Short: "Recover the value a label encodes",
	Long: `Decode labels back to the integer they encode. Only formats whose
dictionaries are unhashable can be decoded; run 'humanhash validate' to check.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDecode,
}

var (
	decodeFormat   string
	decodeTemplate string
	decodeHex      bool
	decodeJSON     bool
)

func init() {
	rootCmd.AddCommand(decodeCmd)
	addFormatFlags(decodeCmd, &decodeFormat, &decodeTemplate)
	decodeCmd.Flags().BoolVar(&decodeHex, "hex", false, "Print the value as big-endian hex bytes")
	decodeCmd.Flags().BoolVar(&decodeJSON, "json", false, "Output as JSON")
}

type decodeResult struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Hex   string `json:"hex"`
}

func runDecode(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	h, err := env.hasher(decodeFormat, decodeTemplate)
	if err != nil {
		return err
	}

	results := make([]decodeResult, 0, len(args))
	for _, label := range args {
		v, err := h.DecodeInt(label)
		if err != nil {
			return err
		}
		results = append(results, decodeResult{
			Label: label,
			Value: v.String(),
			Hex:   hex.EncodeToString(v.FillBytes(make([]byte, h.ByteLen()))),
		})
	}

	if decodeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, r := range results {
		if decodeHex {
			fmt.Println(r.Hex)
		} else {
			fmt.Println(r.Value)
		}
	}
	return nil
}
