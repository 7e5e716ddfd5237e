package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/getcreddy/humanhash/pkg/store"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [label]",
	Short: "Look up recorded labels",
	Long: `Show a label recorded with 'humanhash encode --record', or list the most
recent labels of a format when no label is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLookup,
}

var (
	lookupFormat string
	lookupLimit  int
	lookupJSON   bool
)

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().StringVarP(&lookupFormat, "format", "f", "", "Format the labels were issued with (default \"default\")")
	lookupCmd.Flags().IntVar(&lookupLimit, "limit", 50, "Number of labels to list")
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "Output as JSON")
}

type labelRecord struct {
	Format    string `json:"format"`
	Label     string `json:"label"`
	Value     string `json:"value"`
	Source    string `json:"source,omitempty"`
	CreatedAt string `json:"created_at"`
}

func runLookup(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	format := formatName(lookupFormat, "")

	var labels []*store.Label
	if len(args) == 1 {
		l, err := st.LookupLabel(format, args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%q was never recorded for format %s", args[0], format)
		}
		if err != nil {
			return err
		}
		labels = []*store.Label{l}
	} else {
		if labels, err = st.ListLabels(format, lookupLimit); err != nil {
			return err
		}
	}

	records := make([]labelRecord, 0, len(labels))
	for _, l := range labels {
		records = append(records, labelRecord{
			Format:    l.Format,
			Label:     l.Label,
			Value:     l.Value.String(),
			Source:    l.Source,
			CreatedAt: l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	if lookupJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tLABEL\tVALUE\tSOURCE")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.CreatedAt, r.Label, r.Value, r.Source)
	}
	return w.Flush()
}
