package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getcreddy/humanhash/pkg/humanhash"
)

var validateCmd = &cobra.Command{
	Use:   "validate [format...]",
	Short: "Check that formats can be decoded",
	Long: `Check every listed format, or all configured formats, for unhashability:
every label a format produces must decode back to exactly one value. Exits
non-zero if any format fails.`,
	RunE: runValidate,
}

var validateTemplate string

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&validateTemplate, "template", "t", "", "Validate an ad-hoc template instead")
}

func runValidate(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	names := args
	if validateTemplate != "" {
		names = []string{""}
	} else if len(names) == 0 {
		names = env.cfg.FormatNames()
	}

	failed := 0
	for _, name := range names {
		display := formatName(name, validateTemplate)
		h, err := env.hasher(name, validateTemplate)
		if err == nil {
			err = h.Validate()
		}

		switch {
		case err == nil:
			fmt.Printf("✓ %s\n", display)
		case errors.Is(err, humanhash.ErrNotUnhashable):
			failed++
			fmt.Printf("✗ %s: %v\n", display, err)
		default:
			failed++
			fmt.Printf("✗ %s: invalid format: %v\n", display, err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d formats failed validation", failed, len(names))
	}
	return nil
}
